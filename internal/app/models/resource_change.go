package models

import (
	"time"

	"telehealth-service/internal/pkg/fhir_dto"
)

// ResourceChange describes one successful write against the FHIR server.
type ResourceChange struct {
	ResourceType string    `json:"resourceType" bson:"resource_type"`
	ResourceID   string    `json:"resourceId" bson:"resource_id"`
	Action       string    `json:"action" bson:"action"`
	UserID       string    `json:"userId,omitempty" bson:"user_id,omitempty"`
	Role         string    `json:"role,omitempty" bson:"role,omitempty"`
	RequestID    string    `json:"requestId,omitempty" bson:"request_id,omitempty"`
	OccurredAt   time.Time `json:"occurredAt" bson:"occurred_at"`
}

// ResourcePage is one page of search results as reported by a repository.
type ResourcePage struct {
	Resources []fhir_dto.Resource
	Total     int
}
