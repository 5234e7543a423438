package gateway

import (
	"testing"

	"telehealth-service/internal/pkg/dto/requests"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchParams(t *testing.T) {
	t.Run("page and limit become offset and count", func(t *testing.T) {
		params := BuildSearchParams("Patient", &requests.SearchQuery{Page: 3, Limit: 20})
		assert.Equal(t, "40", params.Get("_offset"))
		assert.Equal(t, "20", params.Get("_count"))
		assert.Equal(t, "accurate", params.Get("_total"))
	})

	t.Run("huge page is clamped instead of overflowing the offset", func(t *testing.T) {
		params := BuildSearchParams("Patient", &requests.SearchQuery{Page: 1e17, Limit: 100})
		assert.Equal(t, "9999900", params.Get("_offset"))
	})

	t.Run("date range with both bounds yields two values", func(t *testing.T) {
		params := BuildSearchParams("Appointment", &requests.SearchQuery{Page: 1, Limit: 10, DateFrom: "2024-01-01", DateTo: "2024-01-31"})
		assert.Equal(t, []string{"ge2024-01-01", "le2024-01-31"}, params["date"])
	})

	t.Run("date range with only a lower bound yields a single value", func(t *testing.T) {
		params := BuildSearchParams("Appointment", &requests.SearchQuery{Page: 1, Limit: 10, DateFrom: "2024-01-01"})
		assert.Equal(t, []string{"ge2024-01-01"}, params["date"])
	})

	t.Run("descending sort is prefixed with a dash", func(t *testing.T) {
		params := BuildSearchParams("Patient", &requests.SearchQuery{Page: 1, Limit: 10, SortBy: "name", SortOrder: "desc"})
		assert.Equal(t, "-name", params.Get("_sort"))
	})

	t.Run("ascending or omitted sort order keeps the field as is", func(t *testing.T) {
		asc := BuildSearchParams("Patient", &requests.SearchQuery{Page: 1, Limit: 10, SortBy: "name", SortOrder: "asc"})
		omitted := BuildSearchParams("Patient", &requests.SearchQuery{Page: 1, Limit: 10, SortBy: "name"})
		assert.Equal(t, "name", asc.Get("_sort"))
		assert.Equal(t, "name", omitted.Get("_sort"))
	})

	t.Run("search text uses name contains by default", func(t *testing.T) {
		params := BuildSearchParams("Practitioner", &requests.SearchQuery{Page: 1, Limit: 10, Search: "wil"})
		assert.Equal(t, "wil", params.Get("name:contains"))
	})

	t.Run("search text on observations uses code text", func(t *testing.T) {
		params := BuildSearchParams("Observation", &requests.SearchQuery{Page: 1, Limit: 10, Search: "glucose"})
		assert.Equal(t, "glucose", params.Get("code:text"))
		assert.False(t, params.Has("name:contains"))
	})

	t.Run("resource filters map to FHIR parameter names", func(t *testing.T) {
		params := BuildSearchParams("Observation", &requests.SearchQuery{
			Page: 1, Limit: 10,
			PatientID: "p1", PractitionerID: "d1", Status: "final", Category: "vital-signs", Code: "8867-4",
		})
		assert.Equal(t, "p1", params.Get("patient"))
		assert.Equal(t, "d1", params.Get("performer"))
		assert.Equal(t, "final", params.Get("status"))
		assert.Equal(t, "vital-signs", params.Get("category"))
		assert.Equal(t, "8867-4", params.Get("code"))
	})

	t.Run("appointment practitioner filter", func(t *testing.T) {
		params := BuildSearchParams("Appointment", &requests.SearchQuery{Page: 1, Limit: 10, PractitionerID: "d1"})
		assert.Equal(t, "d1", params.Get("practitioner"))
	})

	t.Run("extra keys pass through without overriding translated ones", func(t *testing.T) {
		params := BuildSearchParams("Encounter", &requests.SearchQuery{
			Page: 1, Limit: 10,
			Extra: map[string][]string{"class": {"VR"}, "_count": {"999"}},
		})
		assert.Equal(t, "VR", params.Get("class"))
		assert.Equal(t, "10", params.Get("_count"))
	})
}
