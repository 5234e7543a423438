package gateway

import (
	"net/url"
	"strconv"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
)

// Search parameter used for free text, per resource type. Anything not
// listed searches on name:contains.
var textSearchParams = map[string]string{
	constvars.ResourceObservation:       constvars.FhirParamCode + constvars.FhirModifierText,
	constvars.ResourceMedicationRequest: constvars.FhirParamCode + constvars.FhirModifierText,
}

// Search parameter that links a resource to a practitioner.
var practitionerParams = map[string]string{
	constvars.ResourceAppointment:       constvars.FhirParamPractitioner,
	constvars.ResourceObservation:       constvars.FhirParamPerformer,
	constvars.ResourceMedicationRequest: constvars.FhirParamRequester,
	constvars.ResourcePatient:           constvars.FhirParamGeneralPractitioner,
}

// BuildSearchParams translates list options into FHIR search parameters.
func BuildSearchParams(resourceType string, query *requests.SearchQuery) url.Values {
	params := url.Values{}

	_, limit := normalizePaging(query.Page, query.Limit)
	params.Set(constvars.FhirParamOffset, strconv.Itoa(pageOffset(query.Page, query.Limit)))
	params.Set(constvars.FhirParamCount, strconv.Itoa(limit))
	params.Set(constvars.FhirParamTotal, constvars.FhirTotalAccurate)

	if query.Search != "" {
		textParam, ok := textSearchParams[resourceType]
		if !ok {
			textParam = constvars.FhirParamName + constvars.FhirModifierContains
		}
		params.Set(textParam, query.Search)
	}

	if query.SortBy != "" {
		sort := query.SortBy
		if query.SortOrder == constvars.SortOrderDescending {
			sort = "-" + sort
		}
		params.Set(constvars.FhirParamSort, sort)
	}

	if query.PatientID != "" {
		if resourceType == constvars.ResourcePatient {
			params.Set(constvars.FhirParamID, query.PatientID)
		} else {
			params.Set(constvars.FhirParamPatient, query.PatientID)
		}
	}
	if query.PractitionerID != "" {
		practitionerParam, ok := practitionerParams[resourceType]
		if !ok {
			practitionerParam = constvars.FhirParamPractitioner
		}
		params.Set(practitionerParam, query.PractitionerID)
	}

	setIfPresent(params, constvars.FhirParamStatus, query.Status)
	setIfPresent(params, constvars.FhirParamCategory, query.Category)
	setIfPresent(params, constvars.FhirParamCode, query.Code)
	setIfPresent(params, constvars.FhirParamSpecialty, query.Specialty)

	if query.DateFrom != "" {
		params.Add(constvars.FhirParamDate, constvars.FhirPrefixGreaterOrEqual+query.DateFrom)
	}
	if query.DateTo != "" {
		params.Add(constvars.FhirParamDate, constvars.FhirPrefixLessOrEqual+query.DateTo)
	}

	for key, values := range query.Extra {
		if params.Has(key) {
			continue
		}
		for _, value := range values {
			params.Add(key, value)
		}
	}
	return params
}

func setIfPresent(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = constvars.DefaultPage
	}
	if limit < 1 {
		limit = constvars.DefaultPageLimit
	}
	if limit > constvars.MaxPageLimit {
		limit = constvars.MaxPageLimit
	}
	if page > constvars.MaxPage {
		page = constvars.MaxPage
	}
	return page, limit
}

// pageOffset is the zero-based index of the first item on page.
func pageOffset(page, limit int) int {
	page, limit = normalizePaging(page, limit)
	return (page - 1) * limit
}
