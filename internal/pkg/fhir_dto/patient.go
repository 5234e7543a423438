package fhir_dto

type Patient struct {
	ResourceType         string         `json:"resourceType"`
	ID                   string         `json:"id,omitempty"`
	Identifier           []Identifier   `json:"identifier,omitempty"`
	Active               bool           `json:"active"`
	Name                 []HumanName    `json:"name,omitempty"`
	Telecom              []ContactPoint `json:"telecom,omitempty"`
	Gender               string         `json:"gender,omitempty"`
	BirthDate            string         `json:"birthDate,omitempty"`
	Address              []Address      `json:"address,omitempty"`
	GeneralPractitioner  []Reference    `json:"generalPractitioner,omitempty"`
	ManagingOrganization *Reference     `json:"managingOrganization,omitempty"`
}
