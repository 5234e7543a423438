package seeder

import (
	"fmt"
	"math"
	"math/rand"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/fhir_dto"
	"time"
)

var (
	givenNames  = []string{"Olivia", "Liam", "Amelia", "Noah", "Sofia", "Ethan", "Maya", "Lucas", "Aisha", "Mateo", "Hana", "Daniel"}
	familyNames = []string{"Garcia", "Nguyen", "Patel", "Okafor", "Kowalski", "Haddad", "Silva", "Tanaka", "Murphy", "Larsen"}
	cities      = []string{"Springfield", "Riverside", "Fairview", "Lakewood", "Greenville"}
	specialties = []fhir_dto.Coding{
		{System: constvars.SystemNUCCTaxonomy, Code: "207Q00000X", Display: "Family Medicine"},
		{System: constvars.SystemNUCCTaxonomy, Code: "207R00000X", Display: "Internal Medicine"},
		{System: constvars.SystemNUCCTaxonomy, Code: "208000000X", Display: "Pediatrics"},
		{System: constvars.SystemNUCCTaxonomy, Code: "207RC0000X", Display: "Cardiovascular Disease"},
	}
	messages = []string{
		"Please remember to bring your medication list to the visit.",
		"Your lab results are available, let's review them together.",
		"How are you feeling after the dosage change?",
		"Reminder: your video consultation starts in 15 minutes.",
	}
	serviceRequests = []fhir_dto.Coding{
		{System: constvars.SystemLOINC, Code: "24331-1", Display: "Lipid panel"},
		{System: constvars.SystemLOINC, Code: "4548-4", Display: "Hemoglobin A1c"},
		{System: constvars.SystemLOINC, Code: "58410-2", Display: "Complete blood count"},
	}
)

type weightedStatus struct {
	status string
	weight int
}

// Roughly how a telehealth calendar looks: mostly booked or done.
var appointmentStatusWeights = []weightedStatus{
	{constvars.FhirAppointmentStatusBooked, 35},
	{constvars.FhirAppointmentStatusFulfilled, 30},
	{constvars.FhirAppointmentStatusPending, 10},
	{constvars.FhirAppointmentStatusCancelled, 10},
	{constvars.FhirAppointmentStatusProposed, 8},
	{constvars.FhirAppointmentStatusNoShow, 5},
	{constvars.FhirAppointmentStatusEnteredInError, 2},
}

// vitalRange describes one measured observation. Values inside
// [normalLow, normalHigh] are interpreted N.
type vitalRange struct {
	code, display, unit, ucum string
	category                  string
	normalLow, normalHigh     float64
	abnormalLow, abnormalHigh float64
	decimals                  int
}

var vitalRanges = []vitalRange{
	{constvars.LoincHeartRate, "Heart rate", "beats/minute", "/min", constvars.ObservationVitals, 60, 100, 40, 140, 0},
	{constvars.LoincSystolicBP, "Systolic blood pressure", "mmHg", "mm[Hg]", constvars.ObservationVitals, 90, 120, 70, 180, 0},
	{constvars.LoincBodyTemp, "Body temperature", "Cel", "Cel", constvars.ObservationVitals, 36.1, 37.2, 35.0, 40.0, 1},
	{constvars.LoincGlucose, "Glucose [Mass/volume] in Blood", "mg/dL", "mg/dL", constvars.ObservationLab, 70, 99, 50, 250, 0},
}

// Generator builds synthetic FHIR resources from an injectable random source.
type Generator struct {
	rand *rand.Rand
	now  func() time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed)), now: time.Now}
}

func SeedIdentifier(kind string, n int) fhir_dto.Identifier {
	return fhir_dto.Identifier{
		Use:    "secondary",
		System: constvars.SystemSeedIdentifier,
		Value:  fmt.Sprintf("%s-%d", kind, n),
	}
}

func (g *Generator) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}

func (g *Generator) name() fhir_dto.HumanName {
	given, family := g.pick(givenNames), g.pick(familyNames)
	return fhir_dto.HumanName{
		Use:    "official",
		Text:   given + " " + family,
		Family: family,
		Given:  []string{given},
	}
}

func (g *Generator) phone() fhir_dto.ContactPoint {
	return fhir_dto.ContactPoint{System: "phone", Value: fmt.Sprintf("+1-555-%04d", g.rand.Intn(10000)), Use: "mobile"}
}

func (g *Generator) gender() string {
	if g.rand.Intn(2) == 0 {
		return "female"
	}
	return "male"
}

func (g *Generator) Organization(n int) fhir_dto.Organization {
	city := g.pick(cities)
	return fhir_dto.Organization{
		ResourceType: constvars.ResourceOrganization,
		Identifier:   []fhir_dto.Identifier{SeedIdentifier("organization", n)},
		Active:       true,
		Type: []fhir_dto.CodeableConcept{{
			Coding: []fhir_dto.Coding{{System: "http://terminology.hl7.org/CodeSystem/organization-type", Code: "prov", Display: "Healthcare Provider"}},
		}},
		Name:    fmt.Sprintf("%s Telehealth Clinic %d", city, n),
		Telecom: []fhir_dto.ContactPoint{g.phone()},
		Address: []fhir_dto.Address{{Use: "work", Line: []string{fmt.Sprintf("%d Main Street", 100+g.rand.Intn(900))}, City: city, Country: "US"}},
	}
}

func (g *Generator) Practitioner(n int) fhir_dto.Practitioner {
	name := g.name()
	name.Prefix = []string{"Dr."}
	specialty := specialties[g.rand.Intn(len(specialties))]
	return fhir_dto.Practitioner{
		ResourceType: constvars.ResourcePractitioner,
		Identifier:   []fhir_dto.Identifier{SeedIdentifier("practitioner", n)},
		Active:       true,
		Name:         []fhir_dto.HumanName{name},
		Telecom:      []fhir_dto.ContactPoint{g.phone()},
		Gender:       g.gender(),
		Qualification: []fhir_dto.Qualification{{
			Code: fhir_dto.CodeableConcept{Coding: []fhir_dto.Coding{specialty}, Text: specialty.Display},
		}},
	}
}

func (g *Generator) Patient(n int, generalPractitioner, organization fhir_dto.Reference) fhir_dto.Patient {
	birth := g.now().AddDate(-(18 + g.rand.Intn(70)), -g.rand.Intn(12), -g.rand.Intn(28))
	patient := fhir_dto.Patient{
		ResourceType: constvars.ResourcePatient,
		Identifier:   []fhir_dto.Identifier{SeedIdentifier("patient", n)},
		Active:       true,
		Name:         []fhir_dto.HumanName{g.name()},
		Telecom:      []fhir_dto.ContactPoint{g.phone()},
		Gender:       g.gender(),
		BirthDate:    birth.Format("2006-01-02"),
		Address:      []fhir_dto.Address{{Use: "home", City: g.pick(cities), Country: "US"}},
	}
	if generalPractitioner.Reference != "" {
		patient.GeneralPractitioner = []fhir_dto.Reference{generalPractitioner}
	}
	if organization.Reference != "" {
		org := organization
		patient.ManagingOrganization = &org
	}
	return patient
}

// AppointmentStatus draws from appointmentStatusWeights.
func (g *Generator) AppointmentStatus() string {
	total := 0
	for _, w := range appointmentStatusWeights {
		total += w.weight
	}
	roll := g.rand.Intn(total)
	for _, w := range appointmentStatusWeights {
		if roll < w.weight {
			return w.status
		}
		roll -= w.weight
	}
	return constvars.FhirAppointmentStatusBooked
}

func (g *Generator) Appointment(patient, practitioner fhir_dto.Reference) fhir_dto.Appointment {
	status := g.AppointmentStatus()
	// past visits for terminal states, upcoming ones otherwise
	dayOffset := 1 + g.rand.Intn(30)
	switch status {
	case constvars.FhirAppointmentStatusFulfilled, constvars.FhirAppointmentStatusNoShow, constvars.FhirAppointmentStatusEnteredInError:
		dayOffset = -dayOffset
	}
	day := g.now().UTC().AddDate(0, 0, dayOffset)
	start := time.Date(day.Year(), day.Month(), day.Day(), 8+g.rand.Intn(9), 30*g.rand.Intn(2), 0, 0, time.UTC)
	minutes := []int{15, 30, 45}[g.rand.Intn(3)]

	participantStatus := constvars.FhirParticipantStatusAccepted
	if status == constvars.FhirAppointmentStatusProposed || status == constvars.FhirAppointmentStatusPending {
		participantStatus = constvars.FhirParticipantStatusNeedsAction
	}

	return fhir_dto.Appointment{
		ResourceType:    constvars.ResourceAppointment,
		Status:          status,
		Description:     "Telehealth consultation",
		Start:           start.Format(time.RFC3339),
		End:             start.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339),
		MinutesDuration: minutes,
		Participant: []fhir_dto.AppointmentParticipant{
			{Actor: patient, Required: "required", Status: participantStatus},
			{Actor: practitioner, Required: "required", Status: constvars.FhirParticipantStatusAccepted},
		},
	}
}

func (g *Generator) Communication(patient, practitioner fhir_dto.Reference) fhir_dto.Communication {
	subject := patient
	sender := practitioner
	return fhir_dto.Communication{
		ResourceType: constvars.ResourceCommunication,
		Status:       "completed",
		Subject:      &subject,
		Sender:       &sender,
		Recipient:    []fhir_dto.Reference{patient},
		Sent:         g.now().UTC().Add(-time.Duration(g.rand.Intn(72)) * time.Hour).Format(time.RFC3339),
		Payload:      []fhir_dto.CommunicationPayload{{ContentString: g.pick(messages)}},
	}
}

func (g *Generator) ServiceRequest(patient, practitioner fhir_dto.Reference) fhir_dto.ServiceRequest {
	coding := serviceRequests[g.rand.Intn(len(serviceRequests))]
	requester := practitioner
	return fhir_dto.ServiceRequest{
		ResourceType: constvars.ResourceServiceRequest,
		Status:       constvars.FhirRequestStatusActive,
		Intent:       constvars.FhirRequestIntentOrder,
		Code:         &fhir_dto.CodeableConcept{Coding: []fhir_dto.Coding{coding}, Text: coding.Display},
		Subject:      patient,
		Requester:    &requester,
		AuthoredOn:   g.now().UTC().Format(time.RFC3339),
	}
}

// Measurement draws a value for r: 80% inside the normal range, 20% outside it.
func (g *Generator) Measurement(r vitalRange) (float64, string) {
	var value float64
	if g.rand.Float64() < 0.8 {
		value = r.normalLow + g.rand.Float64()*(r.normalHigh-r.normalLow)
	} else if g.rand.Intn(2) == 0 {
		value = r.abnormalLow + g.rand.Float64()*(r.normalLow-r.abnormalLow)
	} else {
		value = r.normalHigh + g.rand.Float64()*(r.abnormalHigh-r.normalHigh)
	}
	value = round(value, r.decimals)
	return value, Interpret(value, r.normalLow, r.normalHigh)
}

func Interpret(value, low, high float64) string {
	switch {
	case value < low:
		return constvars.FhirInterpretationLow
	case value > high:
		return constvars.FhirInterpretationHigh
	default:
		return constvars.FhirInterpretationNormal
	}
}

// BMI is weight / height², height in centimetres, one decimal.
func BMI(weightKg, heightCm float64) float64 {
	meters := heightCm / 100
	if meters <= 0 {
		return 0
	}
	return round(weightKg/(meters*meters), 1)
}

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

func interpretation(code string) []fhir_dto.CodeableConcept {
	display := map[string]string{
		constvars.FhirInterpretationNormal: "Normal",
		constvars.FhirInterpretationHigh:   "High",
		constvars.FhirInterpretationLow:    "Low",
	}[code]
	return []fhir_dto.CodeableConcept{{
		Coding: []fhir_dto.Coding{{System: constvars.SystemInterpretation, Code: code, Display: display}},
	}}
}

func (g *Generator) observation(patient fhir_dto.Reference, category, code, display string, quantity fhir_dto.Quantity) fhir_dto.Observation {
	return fhir_dto.Observation{
		ResourceType: constvars.ResourceObservation,
		Status:       constvars.FhirObservationStatusFinal,
		Category: []fhir_dto.CodeableConcept{{
			Coding: []fhir_dto.Coding{{System: constvars.SystemObservationCat, Code: category}},
		}},
		Code: fhir_dto.CodeableConcept{
			Coding: []fhir_dto.Coding{{System: constvars.SystemLOINC, Code: code, Display: display}},
			Text:   display,
		},
		Subject:           patient,
		EffectiveDateTime: g.now().UTC().Format(time.RFC3339),
		ValueQuantity:     &quantity,
	}
}

// Vitals returns one observation per entry in vitalRanges.
func (g *Generator) Vitals(patient fhir_dto.Reference) []fhir_dto.Observation {
	observations := make([]fhir_dto.Observation, 0, len(vitalRanges))
	for _, r := range vitalRanges {
		value, interp := g.Measurement(r)
		obs := g.observation(patient, r.category, r.code, r.display, fhir_dto.Quantity{Value: value, Unit: r.unit, System: constvars.SystemUCUM, Code: r.ucum})
		obs.Interpretation = interpretation(interp)
		obs.ReferenceRange = []fhir_dto.ReferenceRange{{
			Low:  &fhir_dto.Quantity{Value: r.normalLow, Unit: r.unit, System: constvars.SystemUCUM, Code: r.ucum},
			High: &fhir_dto.Quantity{Value: r.normalHigh, Unit: r.unit, System: constvars.SystemUCUM, Code: r.ucum},
		}}
		observations = append(observations, obs)
	}
	return observations
}

// BodyMeasurements returns a height and a weight observation plus the values
// needed to derive BMI once both are stored.
func (g *Generator) BodyMeasurements(patient fhir_dto.Reference) (height, weight fhir_dto.Observation, heightCm, weightKg float64) {
	heightCm = round(150+g.rand.Float64()*45, 1)
	bmiTarget := 18.5 + g.rand.Float64()*6.5
	if g.rand.Float64() >= 0.8 {
		bmiTarget = 25 + g.rand.Float64()*12
	}
	weightKg = round(bmiTarget*(heightCm/100)*(heightCm/100), 1)

	height = g.observation(patient, constvars.ObservationVitals, constvars.LoincBodyHeight, "Body height", fhir_dto.Quantity{Value: heightCm, Unit: "cm", System: constvars.SystemUCUM, Code: "cm"})
	weight = g.observation(patient, constvars.ObservationVitals, constvars.LoincBodyWeight, "Body weight", fhir_dto.Quantity{Value: weightKg, Unit: "kg", System: constvars.SystemUCUM, Code: "kg"})
	return height, weight, heightCm, weightKg
}

// BMIObservation derives BMI from stored height and weight observations.
func (g *Generator) BMIObservation(patient fhir_dto.Reference, heightCm, weightKg float64, derivedFrom ...fhir_dto.Reference) fhir_dto.Observation {
	bmi := BMI(weightKg, heightCm)
	obs := g.observation(patient, constvars.ObservationVitals, constvars.LoincBMI, "Body mass index (BMI) [Ratio]", fhir_dto.Quantity{Value: bmi, Unit: "kg/m2", System: constvars.SystemUCUM, Code: "kg/m2"})
	obs.Interpretation = interpretation(Interpret(bmi, 18.5, 24.9))
	obs.DerivedFrom = derivedFrom
	return obs
}
