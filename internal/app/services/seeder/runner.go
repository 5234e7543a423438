package seeder

import (
	"context"
	"fmt"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/fhir_dto"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const demoCallTimeout = 30 * time.Second

type Options struct {
	Organizations int
	Practitioners int
	Patients      int
}

// Summary counts resources per type, split by whether this run created them.
type Summary struct {
	Created  map[string]int
	Existing map[string]int
}

func newSummary() *Summary {
	return &Summary{Created: map[string]int{}, Existing: map[string]int{}}
}

// Runner writes generated resources in dependency order:
// Organizations, Practitioners, Patients, then per patient clinical data.
// Every resource carries a seed identifier and is looked up by it first, so
// a rerun, including one after an interrupted run, only fills in what is missing.
type Runner struct {
	Repository contracts.ResourceRepository
	Generator  *Generator
	Limiter    *rate.Limiter
	Log        *logrus.Logger
}

func NewRunner(repository contracts.ResourceRepository, generator *Generator, requestsPerSecond float64, logger *logrus.Logger) *Runner {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Runner{
		Repository: repository,
		Generator:  generator,
		Limiter:    rate.NewLimiter(limit, 1),
		Log:        logger,
	}
}

func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Organizations < 1 || opts.Practitioners < 1 {
		return nil, exceptions.WrapWithoutError(constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, "at least one organization and one practitioner are required")
	}
	summary := newSummary()

	organizations := make([]fhir_dto.Reference, 0, opts.Organizations)
	for i := 1; i <= opts.Organizations; i++ {
		ref, err := r.ensure(ctx, summary, constvars.ResourceOrganization, SeedIdentifier("organization", i), r.Generator.Organization(i))
		if err != nil {
			return summary, err
		}
		organizations = append(organizations, ref)
	}

	practitioners := make([]fhir_dto.Reference, 0, opts.Practitioners)
	for i := 1; i <= opts.Practitioners; i++ {
		ref, err := r.ensure(ctx, summary, constvars.ResourcePractitioner, SeedIdentifier("practitioner", i), r.Generator.Practitioner(i))
		if err != nil {
			return summary, err
		}
		practitioners = append(practitioners, ref)
	}

	for i := 1; i <= opts.Patients; i++ {
		practitioner := practitioners[(i-1)%len(practitioners)]
		organization := organizations[(i-1)%len(organizations)]

		patient, err := r.ensure(ctx, summary, constvars.ResourcePatient, SeedIdentifier("patient", i), r.Generator.Patient(i, practitioner, organization))
		if err != nil {
			return summary, err
		}
		if err := r.seedClinicalData(ctx, summary, i, patient, practitioner); err != nil {
			return summary, err
		}
	}

	r.Log.WithFields(logrus.Fields{
		"created":  summary.Created,
		"existing": summary.Existing,
	}).Info("Seeding finished")
	return summary, nil
}

// clinicalIdentifier names the k-th item of one kind for patient n.
func clinicalIdentifier(n int, kind string, k int) fhir_dto.Identifier {
	return SeedIdentifier(fmt.Sprintf("patient-%d-%s", n, kind), k)
}

func (r *Runner) seedClinicalData(ctx context.Context, summary *Summary, n int, patient, practitioner fhir_dto.Reference) error {
	g := r.Generator

	appointments := 1 + n%2
	for k := 1; k <= appointments; k++ {
		appointment := g.Appointment(patient, practitioner)
		appointment.Identifier = []fhir_dto.Identifier{clinicalIdentifier(n, "appointment", k)}
		if _, err := r.ensure(ctx, summary, constvars.ResourceAppointment, appointment.Identifier[0], appointment); err != nil {
			return err
		}
	}

	communication := g.Communication(patient, practitioner)
	communication.Identifier = []fhir_dto.Identifier{clinicalIdentifier(n, "communication", 1)}
	if _, err := r.ensure(ctx, summary, constvars.ResourceCommunication, communication.Identifier[0], communication); err != nil {
		return err
	}

	serviceRequest := g.ServiceRequest(patient, practitioner)
	serviceRequest.Identifier = []fhir_dto.Identifier{clinicalIdentifier(n, "service-request", 1)}
	if _, err := r.ensure(ctx, summary, constvars.ResourceServiceRequest, serviceRequest.Identifier[0], serviceRequest); err != nil {
		return err
	}

	for k, observation := range g.Vitals(patient) {
		observation.Identifier = []fhir_dto.Identifier{clinicalIdentifier(n, "vital", k+1)}
		if _, err := r.ensure(ctx, summary, constvars.ResourceObservation, observation.Identifier[0], observation); err != nil {
			return err
		}
	}

	height, weight, heightCm, weightKg := g.BodyMeasurements(patient)
	height.Identifier = []fhir_dto.Identifier{clinicalIdentifier(n, "height", 1)}
	weight.Identifier = []fhir_dto.Identifier{clinicalIdentifier(n, "weight", 1)}

	heightRef, stored, err := r.ensureResource(ctx, summary, constvars.ResourceObservation, height.Identifier[0], height)
	if err != nil {
		return err
	}
	// BMI must match what is actually stored, not this run's draw.
	heightCm = quantityValue(stored, heightCm)

	weightRef, stored, err := r.ensureResource(ctx, summary, constvars.ResourceObservation, weight.Identifier[0], weight)
	if err != nil {
		return err
	}
	weightKg = quantityValue(stored, weightKg)

	bmi := g.BMIObservation(patient, heightCm, weightKg, heightRef, weightRef)
	bmi.Identifier = []fhir_dto.Identifier{clinicalIdentifier(n, "bmi", 1)}
	_, err = r.ensure(ctx, summary, constvars.ResourceObservation, bmi.Identifier[0], bmi)
	return err
}

func quantityValue(resource fhir_dto.Resource, fallback float64) float64 {
	quantity, _ := resource["valueQuantity"].(map[string]interface{})
	if value, ok := quantity["value"].(float64); ok {
		return value
	}
	return fallback
}

// DemoUsers makes sure one demo practitioner and one demo patient exist.
func (r *Runner) DemoUsers(ctx context.Context) (practitioner, patient fhir_dto.Reference, err error) {
	summary := newSummary()

	demoPractitioner := r.Generator.Practitioner(1)
	demoPractitioner.Identifier = []fhir_dto.Identifier{SeedIdentifier("demo-practitioner", 1)}
	demoPractitioner.Name = []fhir_dto.HumanName{{Use: "official", Text: "Dr. Demo Provider", Family: "Provider", Given: []string{"Demo"}, Prefix: []string{"Dr."}}}

	practitioner, err = r.withTimeout(ctx, func(ctx context.Context) (fhir_dto.Reference, error) {
		return r.ensure(ctx, summary, constvars.ResourcePractitioner, demoPractitioner.Identifier[0], demoPractitioner)
	})
	if err != nil {
		return practitioner, patient, err
	}

	demoPatient := r.Generator.Patient(1, practitioner, fhir_dto.Reference{})
	demoPatient.Identifier = []fhir_dto.Identifier{SeedIdentifier("demo-patient", 1)}
	demoPatient.Name = []fhir_dto.HumanName{{Use: "official", Text: "Demo Patient", Family: "Patient", Given: []string{"Demo"}}}

	patient, err = r.withTimeout(ctx, func(ctx context.Context) (fhir_dto.Reference, error) {
		return r.ensure(ctx, summary, constvars.ResourcePatient, demoPatient.Identifier[0], demoPatient)
	})
	return practitioner, patient, err
}

func (r *Runner) withTimeout(ctx context.Context, fn func(context.Context) (fhir_dto.Reference, error)) (fhir_dto.Reference, error) {
	ctx, cancel := context.WithTimeout(ctx, demoCallTimeout)
	defer cancel()
	return fn(ctx)
}

// ensure returns the resource carrying identifier, creating it from v when absent.
func (r *Runner) ensure(ctx context.Context, summary *Summary, resourceType string, identifier fhir_dto.Identifier, v interface{}) (fhir_dto.Reference, error) {
	ref, _, err := r.ensureResource(ctx, summary, resourceType, identifier, v)
	return ref, err
}

// ensureResource is ensure that also returns the stored resource when one was
// already there. It returns nil when this call created it.
func (r *Runner) ensureResource(ctx context.Context, summary *Summary, resourceType string, identifier fhir_dto.Identifier, v interface{}) (fhir_dto.Reference, fhir_dto.Resource, error) {
	if err := r.Limiter.Wait(ctx); err != nil {
		return fhir_dto.Reference{}, nil, err
	}

	token := identifier.System + "|" + identifier.Value
	page, err := r.Repository.Search(ctx, resourceType, &requests.SearchQuery{
		Page:  1,
		Limit: 1,
		Extra: map[string][]string{constvars.FhirParamIdentifier: {token}},
	})
	if err != nil {
		return fhir_dto.Reference{}, nil, fmt.Errorf("search %s %s: %w", resourceType, token, err)
	}
	if page.Total > 0 && len(page.Resources) > 0 {
		existing := page.Resources[0]
		summary.Existing[resourceType]++
		r.Log.WithFields(logrus.Fields{
			constvars.LoggingResourceTypeKey: resourceType,
			constvars.LoggingResourceIDKey:   existing.ID(),
			"identifier":                     token,
		}).Debug("Seed resource already present")
		return reference(resourceType, existing.ID()), existing, nil
	}

	ref, err := r.create(ctx, summary, resourceType, v)
	return ref, nil, err
}

func (r *Runner) create(ctx context.Context, summary *Summary, resourceType string, v interface{}) (fhir_dto.Reference, error) {
	if err := r.Limiter.Wait(ctx); err != nil {
		return fhir_dto.Reference{}, err
	}

	resource, err := fhir_dto.ToResource(v)
	if err != nil {
		return fhir_dto.Reference{}, err
	}
	created, err := r.Repository.Create(ctx, resourceType, resource)
	if err != nil {
		return fhir_dto.Reference{}, fmt.Errorf("create %s: %w", resourceType, err)
	}

	summary.Created[resourceType]++
	r.Log.WithFields(logrus.Fields{
		constvars.LoggingResourceTypeKey: resourceType,
		constvars.LoggingResourceIDKey:   created.ID(),
	}).Info("Seed resource created")
	return reference(resourceType, created.ID()), nil
}

func reference(resourceType, id string) fhir_dto.Reference {
	return fhir_dto.Reference{Reference: resourceType + "/" + id}
}
