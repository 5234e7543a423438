package responses

import "telehealth-service/internal/pkg/fhir_dto"

type SearchResult struct {
	Resources  []fhir_dto.Resource `json:"resources"`
	Total      int                 `json:"total"`
	Pagination Pagination          `json:"pagination"`
}
