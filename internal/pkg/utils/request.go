package utils

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
)

var knownSearchKeys = map[string]bool{
	"page": true, "limit": true, "search": true, "sortBy": true, "sortOrder": true,
	"patientId": true, "practitionerId": true, "status": true,
	"dateFrom": true, "dateTo": true, "category": true, "code": true, "specialty": true,
}

// BuildSearchQuery reads list options from a query string. A page or limit
// that is not a number becomes 0 so validation rejects it.
func BuildSearchQuery(values url.Values) *requests.SearchQuery {
	query := &requests.SearchQuery{
		Page:           parseIntOrDefault(values.Get("page"), constvars.DefaultPage),
		Limit:          parseIntOrDefault(values.Get("limit"), constvars.DefaultPageLimit),
		Search:         values.Get("search"),
		SortBy:         values.Get("sortBy"),
		SortOrder:      values.Get("sortOrder"),
		PatientID:      values.Get("patientId"),
		PractitionerID: values.Get("practitionerId"),
		Status:         values.Get("status"),
		DateFrom:       values.Get("dateFrom"),
		DateTo:         values.Get("dateTo"),
		Category:       values.Get("category"),
		Code:           values.Get("code"),
		Specialty:      values.Get("specialty"),
	}

	for key, value := range values {
		if knownSearchKeys[key] {
			continue
		}
		if query.Extra == nil {
			query.Extra = make(map[string][]string)
		}
		query.Extra[key] = append([]string(nil), value...)
	}
	return query
}

func parseIntOrDefault(raw string, defaultValue int) int {
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// ParseResourceBody decodes a JSON object body into a FHIR resource.
func ParseResourceBody(r *http.Request, maxBytes int64) (fhir_dto.Resource, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return nil, exceptions.ErrReadBody(err)
	}
	var resource fhir_dto.Resource
	if err := json.Unmarshal(body, &resource); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	if resource == nil {
		return nil, exceptions.ErrCannotParseJSON(nil)
	}
	return resource, nil
}
