package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"blooddonation/internal/middleware"
	"blooddonation/internal/models"
)

var configureOnce sync.Once

// ConfigureBinding registers the custom validators and makes JSON binding
// reject unknown fields. Safe to call more than once; panics if a validator
// cannot be registered.
func ConfigureBinding() {
	configureOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err := v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
				return models.ValidBloodGroup(fl.Field().String())
			})
			if err != nil {
				panic(fmt.Sprintf("register bloodgroup validator: %v", err))
			}
		}
	})
}

func respondWithError(c *gin.Context, log *zap.Logger, status int, route string, message string) {
	if status >= http.StatusInternalServerError {
		log.Error(message, zap.String("route", route), zap.Int("status", status))
	} else {
		log.Debug(message, zap.String("route", route), zap.Int("status", status))
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// queryValue returns a trimmed query parameter, treating the placeholder
// values clients send for unset selects as absent.
func queryValue(c *gin.Context, key string) string {
	v := strings.TrimSpace(c.Query(key))
	if placeholder(v) {
		return ""
	}
	return v
}

func placeholder(v string) bool {
	switch strings.ToLower(v) {
	case "", "undefined", "null", "all", "select":
		return true
	}
	return false
}

// principal returns the verified email. Routes are only mounted behind the
// gate, so a miss is answered with 401.
func principal(c *gin.Context) (string, bool) {
	email, ok := middleware.PrincipalEmail(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
	}
	return email, ok
}
