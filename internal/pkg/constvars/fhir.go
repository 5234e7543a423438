package constvars

const (
	ResourcePatient           = "Patient"
	ResourcePractitioner      = "Practitioner"
	ResourceOrganization      = "Organization"
	ResourceAppointment       = "Appointment"
	ResourceObservation       = "Observation"
	ResourceMedication        = "Medication"
	ResourceMedicationRequest = "MedicationRequest"
	ResourceInvoice           = "Invoice"
	ResourceCommunication     = "Communication"
	ResourceServiceRequest    = "ServiceRequest"
	ResourceBundle            = "Bundle"
	ResourceOperationOutcome  = "OperationOutcome"
)

const (
	FhirAppointmentStatusProposed       = "proposed"
	FhirAppointmentStatusPending        = "pending"
	FhirAppointmentStatusBooked         = "booked"
	FhirAppointmentStatusFulfilled      = "fulfilled"
	FhirAppointmentStatusCancelled      = "cancelled"
	FhirAppointmentStatusNoShow         = "noshow"
	FhirAppointmentStatusEnteredInError = "entered-in-error"
)

const (
	FhirParticipantStatusAccepted    = "accepted"
	FhirParticipantStatusNeedsAction = "needs-action"
)

const (
	FhirObservationStatusFinal       = "final"
	FhirObservationStatusPreliminary = "preliminary"

	FhirInterpretationNormal = "N"
	FhirInterpretationHigh   = "H"
	FhirInterpretationLow    = "L"
)

const (
	FhirMedicationRequestStatusActive  = "active"
	FhirMedicationRequestStatusStopped = "stopped"
)

const (
	FhirRequestStatusActive    = "active"
	FhirRequestStatusCompleted = "completed"
	FhirRequestStatusDraft     = "draft"

	FhirCommunicationStatusCompleted = "completed"

	FhirRequestIntentOrder = "order"
)

// Search parameter names sent to the FHIR server.
const (
	FhirParamID                  = "_id"
	FhirParamOffset              = "_offset"
	FhirParamCount               = "_count"
	FhirParamSort                = "_sort"
	FhirParamTotal               = "_total"
	FhirParamName                = "name"
	FhirParamPatient             = "patient"
	FhirParamPractitioner        = "practitioner"
	FhirParamPerformer           = "performer"
	FhirParamRequester           = "requester"
	FhirParamGeneralPractitioner = "general-practitioner"
	FhirParamStatus              = "status"
	FhirParamDate                = "date"
	FhirParamCategory            = "category"
	FhirParamCode                = "code"
	FhirParamSpecialty           = "specialty"
	FhirParamIdentifier          = "identifier"

	FhirModifierContains = ":contains"
	FhirModifierText     = ":text"

	FhirPrefixGreaterOrEqual = "ge"
	FhirPrefixLessOrEqual    = "le"

	FhirTotalAccurate = "accurate"
)

const (
	SystemLOINC            = "http://loinc.org"
	SystemUCUM             = "http://unitsofmeasure.org"
	SystemRxNorm           = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemNUCCTaxonomy     = "http://nucc.org/provider-taxonomy"
	SystemObservationCat   = "http://terminology.hl7.org/CodeSystem/observation-category"
	SystemInterpretation   = "http://terminology.hl7.org/CodeSystem/v3-ObservationInterpretation"
	SystemSeedIdentifier   = "urn:telehealth:seed"
	SystemTelehealthUserID = "urn:telehealth:user"
)

const (
	LoincBodyHeight   = "8302-2"
	LoincBodyWeight   = "29463-7"
	LoincBMI          = "39156-5"
	LoincHeartRate    = "8867-4"
	LoincSystolicBP   = "8480-6"
	LoincBodyTemp     = "8310-5"
	LoincGlucose      = "2339-0"
	ObservationVitals = "vital-signs"
	ObservationLab    = "laboratory"
)

const (
	FhirPathPrefix   = "fhir/R4/"
	FhirPathMetadata = "metadata"
	OAuthTokenPath   = "oauth2/token"

	OAuthGrantClientCredentials = "client_credentials"
)
