package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/spendindex/spendindex/internal/analytics/domain"
	categorydomain "github.com/spendindex/spendindex/internal/category/domain"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	storedomain "github.com/spendindex/spendindex/internal/store/domain"
	unitdomain "github.com/spendindex/spendindex/internal/unit/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isAnalyticsValidationError(err),
		isPurchaseValidationError(err),
		isProductValidationError(err),
		isStoreValidationError(err),
		isCategoryValidationError(err),
		isUnitValidationError(err):
		return true
	default:
		return false
	}
}

func isAnalyticsValidationError(err error) bool {
	switch {
	case errors.Is(err, analyticsdomain.ErrInvalidGroupBy),
		errors.Is(err, analyticsdomain.ErrInvalidPriceMode),
		errors.Is(err, analyticsdomain.ErrInvalidPromoMode),
		errors.Is(err, analyticsdomain.ErrInvalidContributionBy),
		errors.Is(err, analyticsdomain.ErrInvalidProduct):
		return true
	default:
		return false
	}
}

func isPurchaseValidationError(err error) bool {
	switch {
	case errors.Is(err, purchasedomain.ErrInvalidProduct),
		errors.Is(err, purchasedomain.ErrInvalidQuantity),
		errors.Is(err, purchasedomain.ErrInvalidTotalPrice),
		errors.Is(err, purchasedomain.ErrInvalidRegularPrice),
		errors.Is(err, purchasedomain.ErrDateInFuture),
		errors.Is(err, purchasedomain.ErrInvalidDateRange):
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidUnit),
		errors.Is(err, productdomain.ErrInvalidCategory):
		return true
	default:
		return false
	}
}

func isStoreValidationError(err error) bool {
	return errors.Is(err, storedomain.ErrInvalidName)
}

func isCategoryValidationError(err error) bool {
	return errors.Is(err, categorydomain.ErrInvalidName)
}

func isUnitValidationError(err error) bool {
	switch {
	case errors.Is(err, unitdomain.ErrInvalidMeasureType),
		errors.Is(err, unitdomain.ErrInvalidUnit):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, storedomain.ErrNameTaken),
		errors.Is(err, categorydomain.ErrNameTaken),
		errors.Is(err, productdomain.ErrProductInUse),
		errors.Is(err, storedomain.ErrStoreInUse),
		errors.Is(err, categorydomain.ErrCategoryInUse),
		errors.Is(err, unitdomain.ErrUnitInUse):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, purchasedomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, storedomain.ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, unitdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
