package validator

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// CustomValidator adapts go-playground/validator to echo's Validator
// interface and registers the domain-specific rules.
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator used by the HTTP layer.
func NewValidator() *CustomValidator {
	v := validator.New()
	// quiet-hours times are "HH:MM" wall-clock strings
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	return &CustomValidator{validate: v}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
