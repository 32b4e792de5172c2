package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/models"
	"blooddonation/internal/store"
)

type createUserRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"max=120"`
	PhotoURL   string `json:"photoURL" binding:"omitempty,url"`
	BloodGroup string `json:"bloodGroup" binding:"omitempty,bloodgroup"`
	District   string `json:"district"`
	Upazila    string `json:"upazila"`
}

// CreateUser registers a profile. Role and status are always donor/active;
// an email that already exists is reported, not overwritten.
func CreateUser(users UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx := c.Request.Context()
		email := normalizeEmail(req.Email)

		_, err := users.FindByEmail(ctx, email)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"message": "User exists", "insertedId": nil})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			respondWithError(c, log, http.StatusInternalServerError, "users.create", "db error")
			return
		}

		user := models.User{
			Email:      email,
			Name:       strings.TrimSpace(req.Name),
			PhotoURL:   strings.TrimSpace(req.PhotoURL),
			BloodGroup: req.BloodGroup,
			District:   strings.TrimSpace(req.District),
			Upazila:    strings.TrimSpace(req.Upazila),
			Role:       models.RoleDonor,
			Status:     models.StatusActive,
			CreatedAt:  time.Now().UTC(),
		}

		res, err := users.Insert(ctx, user)
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusOK, gin.H{"message": "User exists", "insertedId": nil})
			return
		}
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "users.create", "user could not be created")
			return
		}

		log.Info("user registered", zap.String("email", email))
		c.JSON(http.StatusCreated, insertResult(res))
	}
}

func GetUser(users UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.FindByEmail(c.Request.Context(), normalizeEmail(c.Param("email")))
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, log, http.StatusNotFound, "users.get", "user not found")
			return
		}
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "users.get", "db error")
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func GetUserRole(users UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.FindByEmail(c.Request.Context(), normalizeEmail(c.Param("email")))
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, log, http.StatusNotFound, "users.role", "user not found")
			return
		}
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "users.role", "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": user.Role, "status": user.Status})
	}
}

type updateProfileRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=120"`
	PhotoURL   *string `json:"photoURL" binding:"omitempty,url"`
	BloodGroup *string `json:"bloodGroup" binding:"omitempty,bloodgroup"`
	District   *string `json:"district"`
	Upazila    *string `json:"upazila"`
}

// UpdateProfile edits the caller's own profile. Role, status and email are
// not editable here.
func UpdateProfile(users UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := principal(c)
		if !ok {
			return
		}
		if normalizeEmail(c.Param("email")) != email {
			respondWithError(c, log, http.StatusForbidden, "users.update", "forbidden access")
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := store.ProfileUpdate{
			Name:       req.Name,
			PhotoURL:   req.PhotoURL,
			BloodGroup: req.BloodGroup,
			District:   req.District,
			Upazila:    req.Upazila,
		}
		if len(update.Set()) == 0 {
			respondWithError(c, log, http.StatusBadRequest, "users.update", "no fields to update")
			return
		}

		res, err := users.UpdateProfile(c.Request.Context(), email, update)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "users.update", "user could not be updated")
			return
		}
		c.JSON(http.StatusOK, updateResult(res))
	}
}

func ListUsers(users UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c.Query("page"), c.Query("size"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "users.list", err.Error())
			return
		}

		status := queryValue(c, "status")
		if status != "" && !models.ValidUserStatus(status) {
			respondWithError(c, log, http.StatusBadRequest, "users.list", "invalid status")
			return
		}

		list, total, err := users.List(c.Request.Context(), store.UserQuery{Status: status, Page: page})
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "users.list", "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": list, "totalCount": total})
	}
}

// adminTarget reads the target email for an admin action and refuses
// actions on the caller's own account.
func adminTarget(c *gin.Context, log *zap.Logger, route string) (string, bool) {
	actor, ok := principal(c)
	if !ok {
		return "", false
	}
	target := normalizeEmail(c.Query("email"))
	if target == "" {
		respondWithError(c, log, http.StatusBadRequest, route, "email is required")
		return "", false
	}
	if target == actor {
		respondWithError(c, log, http.StatusForbidden, route, "you cannot change your own account")
		return "", false
	}
	return target, true
}

func UpdateUserStatus(users UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, ok := adminTarget(c, log, "users.status")
		if !ok {
			return
		}
		status := strings.TrimSpace(c.Query("status"))
		if !models.ValidUserStatus(status) {
			respondWithError(c, log, http.StatusBadRequest, "users.status", "invalid status")
			return
		}

		res, err := users.UpdateStatus(c.Request.Context(), target, status)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "users.status", "user could not be updated")
			return
		}
		log.Info("user status changed", zap.String("email", target), zap.String("status", status))
		c.JSON(http.StatusOK, updateResult(res))
	}
}

func UpdateUserRole(users UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, ok := adminTarget(c, log, "users.role")
		if !ok {
			return
		}
		role := strings.TrimSpace(c.Query("role"))
		if !models.ValidRole(role) {
			respondWithError(c, log, http.StatusBadRequest, "users.role", "invalid role")
			return
		}

		res, err := users.UpdateRole(c.Request.Context(), target, role)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "users.role", "user could not be updated")
			return
		}
		log.Info("user role changed", zap.String("email", target), zap.String("role", role))
		c.JSON(http.StatusOK, updateResult(res))
	}
}

// SearchDonors lists active donors. Clients send "A " for "A+" because an
// unescaped plus decodes to a space.
func SearchDonors(users UserStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bloodGroup := strings.ReplaceAll(c.Query("bloodGroup"), " ", "+")
		if placeholder(bloodGroup) {
			bloodGroup = ""
		}
		if bloodGroup != "" && !models.ValidBloodGroup(bloodGroup) {
			respondWithError(c, log, http.StatusBadRequest, "donors.search", "invalid blood group")
			return
		}

		donors, err := users.SearchDonors(c.Request.Context(), store.DonorQuery{
			BloodGroup: bloodGroup,
			District:   queryValue(c, "district"),
			Upazila:    queryValue(c, "upazila"),
		})
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "donors.search", "db error")
			return
		}
		c.JSON(http.StatusOK, donors)
	}
}
