package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"blooddonation/internal/middleware"
	"blooddonation/internal/models"
	"blooddonation/internal/store"
)

const recentRequestCount = 3

type donationRequestBody struct {
	RequesterName     string `json:"requesterName" binding:"max=120"`
	RequesterEmail    string `json:"requesterEmail" binding:"omitempty,email"`
	RecipientName     string `json:"recipientName" binding:"required,max=120"`
	RecipientDistrict string `json:"recipientDistrict" binding:"required"`
	RecipientUpazila  string `json:"recipientUpazila" binding:"required"`
	HospitalName      string `json:"hospitalName" binding:"required"`
	FullAddress       string `json:"fullAddress" binding:"required"`
	BloodGroup        string `json:"bloodGroup" binding:"required,bloodgroup"`
	DonationDate      string `json:"donationDate" binding:"required"`
	DonationTime      string `json:"donationTime" binding:"required"`
	RequestMessage    string `json:"requestMessage" binding:"max=2000"`
}

// CreateRequest stores a pending request owned by the caller. A
// requesterEmail in the body must name the caller.
func CreateRequest(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := principal(c)
		if !ok {
			return
		}

		var body donationRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidationError(c, err)
			return
		}
		if body.RequesterEmail != "" && normalizeEmail(body.RequesterEmail) != email {
			respondWithError(c, log, http.StatusForbidden, "requests.create", "forbidden access")
			return
		}

		name := strings.TrimSpace(body.RequesterName)
		if user, ok := middleware.CurrentUser(c); ok && name == "" {
			name = user.Name
		}

		req := models.DonationRequest{
			RequesterName:     name,
			RequesterEmail:    email,
			RecipientName:     strings.TrimSpace(body.RecipientName),
			RecipientDistrict: strings.TrimSpace(body.RecipientDistrict),
			RecipientUpazila:  strings.TrimSpace(body.RecipientUpazila),
			HospitalName:      strings.TrimSpace(body.HospitalName),
			FullAddress:       strings.TrimSpace(body.FullAddress),
			BloodGroup:        body.BloodGroup,
			DonationDate:      strings.TrimSpace(body.DonationDate),
			DonationTime:      strings.TrimSpace(body.DonationTime),
			RequestMessage:    strings.TrimSpace(body.RequestMessage),
			DonationStatus:    models.DonationPending,
			CreatedAt:         time.Now().UTC(),
		}

		res, err := requests.Insert(c.Request.Context(), req)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "requests.create", "request could not be created")
			return
		}
		c.JSON(http.StatusCreated, insertResult(res))
	}
}

func requestID(c *gin.Context, log *zap.Logger, route string) (primitive.ObjectID, bool) {
	id, err := store.ParseID(c.Param("id"))
	if err != nil {
		respondWithError(c, log, http.StatusBadRequest, route, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func GetRequest(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c, log, "requests.get")
		if !ok {
			return
		}

		req, err := requests.FindByID(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, log, http.StatusNotFound, "requests.get", "request not found")
			return
		}
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "requests.get", "db error")
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// listRequests answers the paged listings. requester narrows to one
// owner; fixedStatus overrides the status query parameter.
func listRequests(c *gin.Context, requests RequestStore, log *zap.Logger, route, requester, fixedStatus string, page store.Page) {
	status := fixedStatus
	if status == "" {
		status = queryValue(c, "status")
		if status != "" && !models.ValidDonationStatus(status) {
			respondWithError(c, log, http.StatusBadRequest, route, "invalid status")
			return
		}
	}

	list, total, err := requests.List(c.Request.Context(), store.RequestQuery{
		RequesterEmail: requester,
		Status:         status,
		Page:           page,
	})
	if err != nil {
		respondWithError(c, log, http.StatusInternalServerError, route, "db error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list, "totalCount": total})
}

func MyRequests(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := principal(c)
		if !ok {
			return
		}
		page, err := parsePage(c.Query("page"), c.Query("size"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "requests.mine", err.Error())
			return
		}
		listRequests(c, requests, log, "requests.mine", email, "", page)
	}
}

func MyRecentRequests(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := principal(c)
		if !ok {
			return
		}
		list, err := requests.Recent(c.Request.Context(), email, recentRequestCount)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "requests.recent", "db error")
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func AllRequests(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c.Query("page"), c.Query("size"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "requests.all", err.Error())
			return
		}
		listRequests(c, requests, log, "requests.all", "", "", page)
	}
}

// PendingRequests is the public feed. It is unpaged unless page or size
// is given.
func PendingRequests(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parseOptionalPage(c.Query("page"), c.Query("size"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "requests.pending", err.Error())
			return
		}
		listRequests(c, requests, log, "requests.pending", "", models.DonationPending, page)
	}
}

// authorizeRequestChange lets the owner or staff through. A request that
// does not exist is let through too; the write then matches nothing.
func authorizeRequestChange(c *gin.Context, requests RequestStore, log *zap.Logger, route string, id primitive.ObjectID) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondWithError(c, log, http.StatusUnauthorized, route, "unauthorized access")
		return false
	}
	if models.IsStaff(user.Role) {
		return true
	}

	req, err := requests.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return true
	}
	if err != nil {
		respondWithError(c, log, http.StatusInternalServerError, route, "db error")
		return false
	}
	if req.RequesterEmail != user.Email {
		respondWithError(c, log, http.StatusForbidden, route, "forbidden access")
		return false
	}
	return true
}

type requestUpdateBody struct {
	RecipientName     *string `json:"recipientName" binding:"omitempty,min=1,max=120"`
	RecipientDistrict *string `json:"recipientDistrict" binding:"omitempty,min=1"`
	RecipientUpazila  *string `json:"recipientUpazila" binding:"omitempty,min=1"`
	HospitalName      *string `json:"hospitalName" binding:"omitempty,min=1"`
	FullAddress       *string `json:"fullAddress" binding:"omitempty,min=1"`
	BloodGroup        *string `json:"bloodGroup" binding:"omitempty,bloodgroup"`
	DonationDate      *string `json:"donationDate" binding:"omitempty,min=1"`
	DonationTime      *string `json:"donationTime" binding:"omitempty,min=1"`
	RequestMessage    *string `json:"requestMessage" binding:"omitempty,max=2000"`
}

func UpdateRequest(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c, log, "requests.update")
		if !ok {
			return
		}

		var body requestUpdateBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidationError(c, err)
			return
		}
		update := store.RequestUpdate{
			RecipientName:     body.RecipientName,
			RecipientDistrict: body.RecipientDistrict,
			RecipientUpazila:  body.RecipientUpazila,
			HospitalName:      body.HospitalName,
			FullAddress:       body.FullAddress,
			BloodGroup:        body.BloodGroup,
			DonationDate:      body.DonationDate,
			DonationTime:      body.DonationTime,
			RequestMessage:    body.RequestMessage,
		}
		if len(update.Set()) == 0 {
			respondWithError(c, log, http.StatusBadRequest, "requests.update", "no fields to update")
			return
		}

		if !authorizeRequestChange(c, requests, log, "requests.update", id) {
			return
		}

		res, err := requests.Update(c.Request.Context(), id, update)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "requests.update", "request could not be updated")
			return
		}
		c.JSON(http.StatusOK, updateResult(res))
	}
}

type statusBody struct {
	Status string `json:"status" binding:"required"`
}

func UpdateRequestStatus(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c, log, "requests.status")
		if !ok {
			return
		}

		var body statusBody
		if err := c.ShouldBindJSON(&body); err != nil {
			respondValidationError(c, err)
			return
		}
		if !models.ValidDonationStatus(body.Status) {
			respondWithError(c, log, http.StatusBadRequest, "requests.status", "invalid status")
			return
		}

		if !authorizeRequestChange(c, requests, log, "requests.status", id) {
			return
		}

		res, err := requests.UpdateStatus(c.Request.Context(), id, body.Status)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "requests.status", "request could not be updated")
			return
		}
		c.JSON(http.StatusOK, updateResult(res))
	}
}

type donateBody struct {
	DonorName string `json:"donorName" binding:"max=120"`
}

// DonateToRequest claims a pending request for the caller. Only one claim
// can win; later claims get 409.
func DonateToRequest(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c, log, "requests.donate")
		if !ok {
			return
		}
		user, ok := middleware.CurrentUser(c)
		if !ok {
			respondWithError(c, log, http.StatusUnauthorized, "requests.donate", "unauthorized access")
			return
		}

		var body donateBody
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				respondValidationError(c, err)
				return
			}
		}
		name := strings.TrimSpace(body.DonorName)
		if name == "" {
			name = user.Name
		}

		ctx := c.Request.Context()
		req, err := requests.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, log, http.StatusNotFound, "requests.donate", "request not found")
			return
		}
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "requests.donate", "db error")
			return
		}
		if req.RequesterEmail == user.Email {
			respondWithError(c, log, http.StatusForbidden, "requests.donate", "you cannot donate to your own request")
			return
		}

		res, err := requests.Claim(ctx, id, name, user.Email)
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondWithError(c, log, http.StatusNotFound, "requests.donate", "request not found")
			return
		case errors.Is(err, store.ErrNotPending):
			respondWithError(c, log, http.StatusConflict, "requests.donate", "request is no longer pending")
			return
		case err != nil:
			respondWithError(c, log, http.StatusInternalServerError, "requests.donate", "request could not be updated")
			return
		}

		log.Info("donation claimed", zap.String("request", id.Hex()), zap.String("donor", user.Email))
		c.JSON(http.StatusOK, updateResult(res))
	}
}

// DeleteRequest answers 200 with deletedCount 0 when the id matches nothing.
func DeleteRequest(requests RequestStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c, log, "requests.delete")
		if !ok {
			return
		}
		if !authorizeRequestChange(c, requests, log, "requests.delete", id) {
			return
		}

		res, err := requests.Delete(c.Request.Context(), id)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "requests.delete", "request could not be deleted")
			return
		}
		c.JSON(http.StatusOK, deleteResult(res))
	}
}
