package fhir_dto

type MedicationRequest struct {
	ResourceType              string            `json:"resourceType"`
	ID                        string            `json:"id,omitempty"`
	Status                    string            `json:"status"`
	Intent                    string            `json:"intent"`
	MedicationCodeableConcept *CodeableConcept  `json:"medicationCodeableConcept,omitempty"`
	Subject                   Reference         `json:"subject"`
	Requester                 *Reference        `json:"requester,omitempty"`
	AuthoredOn                string            `json:"authoredOn,omitempty"`
	DosageInstruction         []DosageText      `json:"dosageInstruction,omitempty"`
	Note                      []Annotation      `json:"note,omitempty"`
	ReasonCode                []CodeableConcept `json:"reasonCode,omitempty"`
}

type DosageText struct {
	Text string `json:"text"`
}
