package fhir_dto

type Communication struct {
	ResourceType string                 `json:"resourceType"`
	ID           string                 `json:"id,omitempty"`
	Identifier   []Identifier           `json:"identifier,omitempty"`
	Status       string                 `json:"status"`
	Category     []CodeableConcept      `json:"category,omitempty"`
	Subject      *Reference             `json:"subject,omitempty"`
	Sender       *Reference             `json:"sender,omitempty"`
	Recipient    []Reference            `json:"recipient,omitempty"`
	Sent         string                 `json:"sent,omitempty"`
	Payload      []CommunicationPayload `json:"payload,omitempty"`
}

type CommunicationPayload struct {
	ContentString string `json:"contentString"`
}

type ServiceRequest struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id,omitempty"`
	Identifier   []Identifier      `json:"identifier,omitempty"`
	Status       string            `json:"status"`
	Intent       string            `json:"intent"`
	Category     []CodeableConcept `json:"category,omitempty"`
	Code         *CodeableConcept  `json:"code,omitempty"`
	Subject      Reference         `json:"subject"`
	Requester    *Reference        `json:"requester,omitempty"`
	AuthoredOn   string            `json:"authoredOn,omitempty"`
	Note         []Annotation      `json:"note,omitempty"`
}
