package gateway

import (
	"fmt"
	"strings"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/fhir_dto"
)

func mockID(resourceType string, n int) string {
	return fmt.Sprintf("mock-%s-%d", strings.ToLower(resourceType), n)
}

func mockRef(resourceType string, n int) fhir_dto.Reference {
	return fhir_dto.Reference{Reference: resourceType + "/" + mockID(resourceType, n)}
}

func mustResources(items ...interface{}) []fhir_dto.Resource {
	resources := make([]fhir_dto.Resource, 0, len(items))
	for _, item := range items {
		resource, err := fhir_dto.ToResource(item)
		if err != nil {
			panic(fmt.Sprintf("gateway: invalid mock resource: %v", err))
		}
		resources = append(resources, resource)
	}
	return resources
}

func mockPatient(n int, given, family, gender, birthDate, email, city string) fhir_dto.Patient {
	return fhir_dto.Patient{
		ResourceType: constvars.ResourcePatient,
		ID:           mockID(constvars.ResourcePatient, n),
		Active:       true,
		Name:         []fhir_dto.HumanName{{Use: "official", Family: family, Given: []string{given}}},
		Gender:       gender,
		BirthDate:    birthDate,
		Telecom: []fhir_dto.ContactPoint{
			{System: "email", Value: email, Use: "home"},
		},
		Address: []fhir_dto.Address{{Use: "home", City: city, Country: "US"}},
	}
}

func mockPractitioner(n int, given, family, specialtyCode, specialty string) fhir_dto.Practitioner {
	return fhir_dto.Practitioner{
		ResourceType: constvars.ResourcePractitioner,
		ID:           mockID(constvars.ResourcePractitioner, n),
		Active:       true,
		Name:         []fhir_dto.HumanName{{Use: "official", Family: family, Given: []string{given}, Prefix: []string{"Dr."}}},
		Telecom: []fhir_dto.ContactPoint{
			{System: "email", Value: strings.ToLower(given+"."+family) + "@clinic.example", Use: "work"},
		},
		Qualification: []fhir_dto.Qualification{{
			Code: fhir_dto.CodeableConcept{
				Coding: []fhir_dto.Coding{{System: constvars.SystemNUCCTaxonomy, Code: specialtyCode, Display: specialty}},
				Text:   specialty,
			},
		}},
	}
}

func mockAppointment(n int, status, start, end, description string, patient, practitioner int) fhir_dto.Appointment {
	return fhir_dto.Appointment{
		ResourceType: constvars.ResourceAppointment,
		ID:           mockID(constvars.ResourceAppointment, n),
		Status:       status,
		Description:  description,
		Start:        start,
		End:          end,
		Participant: []fhir_dto.AppointmentParticipant{
			{Actor: mockRef(constvars.ResourcePatient, patient), Status: constvars.FhirParticipantStatusAccepted},
			{Actor: mockRef(constvars.ResourcePractitioner, practitioner), Status: constvars.FhirParticipantStatusAccepted},
		},
	}
}

func mockObservation(n int, loinc, display string, value float64, unit, effective string, patient int) fhir_dto.Observation {
	return fhir_dto.Observation{
		ResourceType: constvars.ResourceObservation,
		ID:           mockID(constvars.ResourceObservation, n),
		Status:       constvars.FhirObservationStatusFinal,
		Category: []fhir_dto.CodeableConcept{{
			Coding: []fhir_dto.Coding{{System: constvars.SystemObservationCat, Code: constvars.ObservationVitals}},
		}},
		Code: fhir_dto.CodeableConcept{
			Coding: []fhir_dto.Coding{{System: constvars.SystemLOINC, Code: loinc, Display: display}},
			Text:   display,
		},
		Subject:           mockRef(constvars.ResourcePatient, patient),
		EffectiveDateTime: effective,
		ValueQuantity:     &fhir_dto.Quantity{Value: value, Unit: unit, System: constvars.SystemUCUM, Code: unit},
	}
}

func mockMedicationRequest(n int, status, rxnorm, medication, dosage string, patient, practitioner int) fhir_dto.MedicationRequest {
	requester := mockRef(constvars.ResourcePractitioner, practitioner)
	return fhir_dto.MedicationRequest{
		ResourceType: constvars.ResourceMedicationRequest,
		ID:           mockID(constvars.ResourceMedicationRequest, n),
		Status:       status,
		Intent:       constvars.FhirRequestIntentOrder,
		MedicationCodeableConcept: &fhir_dto.CodeableConcept{
			Coding: []fhir_dto.Coding{{System: constvars.SystemRxNorm, Code: rxnorm, Display: medication}},
			Text:   medication,
		},
		Subject:           mockRef(constvars.ResourcePatient, patient),
		Requester:         &requester,
		AuthoredOn:        "2024-01-10",
		DosageInstruction: []fhir_dto.DosageText{{Text: dosage}},
	}
}

func mockOrganization(n int, name, city string) fhir_dto.Organization {
	return fhir_dto.Organization{
		ResourceType: constvars.ResourceOrganization,
		ID:           mockID(constvars.ResourceOrganization, n),
		Active:       true,
		Name:         name,
		Address:      []fhir_dto.Address{{Use: "work", City: city, Country: "US"}},
	}
}

// newMockDatasets returns fresh copies of the fixed mock data, keyed by resource type.
func newMockDatasets() map[string][]fhir_dto.Resource {
	return map[string][]fhir_dto.Resource{
		constvars.ResourcePatient: mustResources(
			mockPatient(1, "John", "Smith", "male", "1985-03-15", "john.smith@example.com", "Boston"),
			mockPatient(2, "Jane", "Doe", "female", "1990-07-22", "jane.doe@example.com", "Chicago"),
			mockPatient(3, "Maria", "Garcia", "female", "1978-11-02", "maria.garcia@example.com", "Austin"),
			mockPatient(4, "Robert", "Johnson", "male", "1962-01-30", "robert.johnson@example.com", "Seattle"),
			mockPatient(5, "Emily", "Chen", "female", "2001-05-09", "emily.chen@example.com", "Denver"),
		),
		constvars.ResourcePractitioner: mustResources(
			mockPractitioner(1, "Sarah", "Wilson", "207RC0000X", "Cardiology"),
			mockPractitioner(2, "Michael", "Brown", "207Q00000X", "Family Medicine"),
			mockPractitioner(3, "Lisa", "Anderson", "208000000X", "Pediatrics"),
		),
		constvars.ResourceAppointment: mustResources(
			mockAppointment(1, constvars.FhirAppointmentStatusBooked, "2024-02-01T09:00:00Z", "2024-02-01T09:30:00Z", "Cardiology follow-up", 1, 1),
			mockAppointment(2, constvars.FhirAppointmentStatusFulfilled, "2024-01-15T14:00:00Z", "2024-01-15T14:30:00Z", "Annual physical", 2, 2),
			mockAppointment(3, constvars.FhirAppointmentStatusPending, "2024-02-05T10:00:00Z", "2024-02-05T10:30:00Z", "Pediatric consultation", 5, 3),
			mockAppointment(4, constvars.FhirAppointmentStatusCancelled, "2024-01-20T11:00:00Z", "2024-01-20T11:30:00Z", "Blood pressure review", 4, 2),
		),
		constvars.ResourceObservation: mustResources(
			mockObservation(1, constvars.LoincHeartRate, "Heart rate", 72, "/min", "2024-01-15T14:10:00Z", 1),
			mockObservation(2, constvars.LoincSystolicBP, "Systolic blood pressure", 128, "mm[Hg]", "2024-01-15T14:12:00Z", 4),
			mockObservation(3, constvars.LoincBodyWeight, "Body weight", 68.5, "kg", "2024-01-15T14:15:00Z", 2),
			mockObservation(4, constvars.LoincGlucose, "Glucose", 95, "mg/dL", "2024-01-16T08:00:00Z", 3),
		),
		constvars.ResourceMedicationRequest: mustResources(
			mockMedicationRequest(1, constvars.FhirMedicationRequestStatusActive, "314076", "Lisinopril 10 MG Oral Tablet", "Take one tablet daily", 4, 2),
			mockMedicationRequest(2, constvars.FhirMedicationRequestStatusActive, "860975", "Metformin 500 MG Oral Tablet", "Take one tablet twice daily with meals", 3, 2),
			mockMedicationRequest(3, constvars.FhirMedicationRequestStatusStopped, "617310", "Atorvastatin 20 MG Oral Tablet", "Take one tablet at bedtime", 1, 1),
		),
		constvars.ResourceOrganization: mustResources(
			mockOrganization(1, "Telehealth General Clinic", "Boston"),
			mockOrganization(2, "Riverside Family Practice", "Chicago"),
		),
	}
}
