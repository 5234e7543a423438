package requests

// SearchQuery holds the list options accepted by every FHIR list route.
type SearchQuery struct {
	Page           int    `validate:"gte=1,lte=100000"`
	Limit          int    `validate:"gte=1,lte=100"`
	Search         string `validate:"omitempty,max=200"`
	SortBy         string `validate:"omitempty,max=64"`
	SortOrder      string `validate:"omitempty,oneof=asc desc"`
	PatientID      string `validate:"omitempty,max=64"`
	PractitionerID string `validate:"omitempty,max=64"`
	Status         string `validate:"omitempty,max=64"`
	DateFrom       string `validate:"omitempty,fhir_date"`
	DateTo         string `validate:"omitempty,fhir_date"`
	Category       string
	Code           string
	Specialty      string

	// Extra carries unrecognised query keys. Named routes drop them and the generic route forwards them.
	Extra map[string][]string
}
