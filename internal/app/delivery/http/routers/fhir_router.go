package routers

import (
	"net/http"
	"telehealth-service/internal/app/delivery/http/controllers"
	"telehealth-service/internal/app/delivery/http/middlewares"
	"telehealth-service/internal/app/services/shared/rbac"
	"telehealth-service/internal/pkg/constvars"

	"github.com/go-chi/chi/v5"
)

// resourceGuards holds the access checks for one family of routes.
type resourceGuards struct {
	list   func(http.Handler) http.Handler
	read   func(http.Handler) http.Handler
	create func(http.Handler) http.Handler
	update func(http.Handler) http.Handler
	delete func(http.Handler) http.Handler
}

func policyGuards(middlewares *middlewares.Middlewares, object string) resourceGuards {
	return resourceGuards{
		list:   middlewares.Permit(object, rbac.ActionList),
		read:   middlewares.Permit(object, rbac.ActionRead),
		create: middlewares.Permit(object, rbac.ActionCreate),
		update: middlewares.Permit(object, rbac.ActionUpdate),
		delete: middlewares.Permit(object, rbac.ActionDelete),
	}
}

func attachFhirRoutes(router chi.Router, middlewares *middlewares.Middlewares, fhirController *controllers.FhirResourceController) {
	patients := policyGuards(middlewares, rbac.ObjectPatients)
	patients.read = middlewares.AuthorizeOwnership("id")
	patients.update = middlewares.AuthorizeOwnership("id")

	named := []struct {
		path         string
		resourceType string
		guards       resourceGuards
		self         func(http.Handler) http.Handler
	}{
		{"/patients", constvars.ResourcePatient, patients, middlewares.AuthorizePatient},
		{"/practitioners", constvars.ResourcePractitioner, policyGuards(middlewares, rbac.ObjectPractitioners), middlewares.AuthorizeProvider},
		{"/appointments", constvars.ResourceAppointment, policyGuards(middlewares, rbac.ObjectAppointments), nil},
		{"/observations", constvars.ResourceObservation, policyGuards(middlewares, rbac.ObjectObservations), nil},
		{"/medications", constvars.ResourceMedicationRequest, policyGuards(middlewares, rbac.ObjectMedications), nil},
	}

	for _, route := range named {
		router.Route(route.path, func(r chi.Router) {
			r.Use(fhirController.ForResource(route.resourceType))
			if route.self != nil {
				r.With(route.self).Get("/me", fhirController.GetOwn)
			}
			attachResourceRoutes(r, route.guards, fhirController)
		})
	}

	router.Route("/{resourceType}", func(r chi.Router) {
		attachResourceRoutes(r, policyGuards(middlewares, rbac.ObjectResources), fhirController)
	})
}

func attachResourceRoutes(router chi.Router, guards resourceGuards, fhirController *controllers.FhirResourceController) {
	router.With(guards.list).Get("/", fhirController.Search)
	router.With(guards.create).Post("/", fhirController.Create)
	router.With(guards.read).Get("/{id}", fhirController.Get)
	router.With(guards.update).Put("/{id}", fhirController.Update)
	router.With(guards.delete).Delete("/{id}", fhirController.Delete)
}
