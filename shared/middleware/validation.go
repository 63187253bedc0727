package middleware

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/eaglebank/ledger/shared/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Decimals are validated through their canonical string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("decimalgt0", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive() && d.Equal(d.Truncate(2))
	})
	_ = v.RegisterValidation("accountnumber", func(fl validator.FieldLevel) bool {
		return utils.ValidateAccountNumber(fl.Field().String())
	})
	return v
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ErrorResponse is the body of every non-2xx response. Code is stable and
// safe for clients to branch on.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
}

func ValidateRequest(obj any) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Message: err.Error(), Type: "invalid"}}
	}
	for _, err := range fieldErrs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: getErrorMsg(err),
			Type:    err.Tag(),
		})
	}

	return validationErrors
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gt":
		return "Value must be greater than " + err.Param()
	case "gte":
		return "Value must be greater than or equal to " + err.Param()
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "datetime":
		return "Value must be a date formatted as " + err.Param()
	case "decimalgt0":
		return "Value must be a decimal greater than zero with at most two decimal places"
	case "accountnumber":
		return "Value must be a 10-digit account number starting with 53 or 33"
	default:
		return "Invalid value"
	}
}

func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    "invalid_argument",
		Message: "Invalid request data",
		Details: validationErrors,
	})
}

func RespondWithError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
