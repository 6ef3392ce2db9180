package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var sfidRe = regexp.MustCompile(`^[a-zA-Z0-9]{15}([a-zA-Z0-9]{3})?$`)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the sfid tag registered
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("sfid", validateSalesforceID)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// IsSalesforceID reports whether s looks like a 15 or 18 character record id
func IsSalesforceID(s string) bool {
	return sfidRe.MatchString(s)
}

func validateSalesforceID(fl validator.FieldLevel) bool {
	return IsSalesforceID(fl.Field().String())
}
