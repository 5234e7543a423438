package exceptions

import (
	"errors"
	"fmt"
	"net/http"
)

// FHIRServerError is an upstream FHIR failure. It is passed through the
// gateway untouched so the caller decides how to surface it.
type FHIRServerError struct {
	StatusCode   int
	ResourceType string
	Operation    string
	Diagnostics  string
}

func (e *FHIRServerError) Error() string {
	if e.Diagnostics == "" {
		return fmt.Sprintf("fhir %s %s: upstream status %d", e.Operation, e.ResourceType, e.StatusCode)
	}
	return fmt.Sprintf("fhir %s %s: upstream status %d: %s", e.Operation, e.ResourceType, e.StatusCode, e.Diagnostics)
}

func (e *FHIRServerError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}

func AsFHIRServerError(err error) (*FHIRServerError, bool) {
	var fhirErr *FHIRServerError
	if errors.As(err, &fhirErr) {
		return fhirErr, true
	}
	return nil, false
}
