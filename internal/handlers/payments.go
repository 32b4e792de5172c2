package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/models"
	"blooddonation/internal/payments"
)

const checkoutProductName = "Blood donation fund"

// CheckoutConfig holds what the checkout handlers need besides the gateway.
type CheckoutConfig struct {
	Currency   string
	SiteDomain string
}

func (cfg CheckoutConfig) successURL() string {
	return strings.TrimRight(cfg.SiteDomain, "/") + "/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

func (cfg CheckoutConfig) cancelURL() string {
	return strings.TrimRight(cfg.SiteDomain, "/") + "/payment-cancelled"
}

type checkoutRequest struct {
	DonateAmount payments.Amount `json:"donateAmount"`
	DonorName    string          `json:"donorName" binding:"max=120"`
}

// CreateCheckout opens a hosted checkout session for a donation in major
// units. The session carries the donor in its metadata.
func CreateCheckout(gateway payments.Gateway, cfg CheckoutConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := principal(c)
		if !ok {
			return
		}
		if gateway == nil {
			respondWithError(c, log, http.StatusServiceUnavailable, "payments.checkout", "payments are not configured")
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		minor, err := req.DonateAmount.MinorUnits()
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "payments.checkout", "donateAmount is required")
			return
		}

		name := strings.TrimSpace(req.DonorName)
		if name == "" {
			name = models.AnonymousDonor
		}

		session, err := gateway.CreateCheckoutSession(c.Request.Context(), payments.CheckoutRequest{
			AmountMinor:   minor,
			Currency:      cfg.Currency,
			ProductName:   checkoutProductName,
			SuccessURL:    cfg.successURL(),
			CancelURL:     cfg.cancelURL(),
			CustomerEmail: email,
			Metadata: map[string]string{
				"donorName":  name,
				"donorEmail": email,
			},
		})
		if err != nil {
			log.Error("checkout session failed", zap.String("email", email), zap.Error(err))
			respondWithError(c, log, http.StatusInternalServerError, "payments.checkout", "checkout could not be created")
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": session.URL, "sessionId": session.ID})
	}
}

type successRequest struct {
	SessionID string `json:"sessionId"`
}

// ConfirmPayment records a paid session once. Repeats for the same payment
// return the stored record.
func ConfirmPayment(gateway payments.Gateway, records PaymentStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gateway == nil {
			respondWithError(c, log, http.StatusServiceUnavailable, "payments.success", "payments are not configured")
			return
		}

		sessionID := strings.TrimSpace(c.Query("session_id"))
		if sessionID == "" && c.Request.ContentLength != 0 {
			var body successRequest
			if err := c.ShouldBindJSON(&body); err != nil {
				respondValidationError(c, err)
				return
			}
			sessionID = strings.TrimSpace(body.SessionID)
		}
		if sessionID == "" {
			respondWithError(c, log, http.StatusBadRequest, "payments.success", "session_id is required")
			return
		}

		ctx := c.Request.Context()
		details, err := gateway.RetrieveSession(ctx, sessionID)
		if err != nil {
			log.Error("session lookup failed", zap.String("session", sessionID), zap.Error(err))
			respondWithError(c, log, http.StatusBadRequest, "payments.success", "checkout session could not be verified")
			return
		}
		if !details.Paid() {
			respondWithError(c, log, http.StatusBadRequest, "payments.success", "payment not completed")
			return
		}

		payment := models.Payment{
			Amount:        payments.FromMinorUnits(details.AmountTotal),
			DonorEmail:    firstNonEmpty(details.Metadata["donorEmail"], details.CustomerEmail),
			DonorName:     firstNonEmpty(details.Metadata["donorName"], models.AnonymousDonor),
			TransactionID: details.PaymentIntentID,
			PaidAt:        time.Now().UTC(),
		}

		recorded, created, err := records.Record(ctx, payment)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "payments.success", "payment could not be recorded")
			return
		}
		if !created {
			c.JSON(http.StatusOK, gin.H{"message": "payment already recorded", "payment": recorded, "alreadyRecorded": true})
			return
		}

		log.Info("payment recorded", zap.String("transaction", recorded.TransactionID), zap.Float64("amount", recorded.Amount))
		c.JSON(http.StatusCreated, gin.H{"message": "payment recorded", "payment": recorded, "alreadyRecorded": false})
	}
}

func ListPayments(records PaymentStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c.Query("page"), c.Query("size"))
		if err != nil {
			respondWithError(c, log, http.StatusBadRequest, "payments.list", err.Error())
			return
		}

		list, total, err := records.List(c.Request.Context(), page)
		if err != nil {
			respondWithError(c, log, http.StatusInternalServerError, "payments.list", "db error")
			return
		}
		c.JSON(http.StatusOK, gin.H{"payments": list, "totalCount": total})
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
