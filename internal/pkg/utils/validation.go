package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	resourceTypePattern = regexp.MustCompile(`^[A-Z][A-Za-z]{1,63}$`)
	fhirDatePattern     = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:\d{2})?)?)?)?$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
		return IsResourceTypeName(fl.Field().String())
	})
	_ = v.RegisterValidation("fhir_date", func(fl validator.FieldLevel) bool {
		return fhirDatePattern.MatchString(fl.Field().String())
	})
	return v
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// IsResourceTypeName reports whether name looks like a FHIR resource type, e.g. "Patient".
func IsResourceTypeName(name string) bool {
	return resourceTypePattern.MatchString(name)
}
