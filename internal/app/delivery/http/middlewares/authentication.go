package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/rbac"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Authenticate verifies the bearer token and stores the caller in the request context.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if authHeader == "" || !strings.HasPrefix(authHeader, constvars.BearerPrefix) {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, constvars.BearerPrefix))

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := m.AuthUsecase.Authenticate(ctx, token)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrServerDeadlineExceeded(err))
				return
			}
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}

		m.Log.Debug("Middlewares.Authenticate succeeded",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
			zap.String(constvars.LoggingUserIDKey, user.ID),
			zap.String(constvars.LoggingRoleKey, user.Role),
		)
		next.ServeHTTP(w, r.WithContext(models.ContextWithUser(r.Context(), user)))
	})
}

// Permit lets the request through only when the policy admits the caller's role to action on object.
func (m *Middlewares) Permit(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := models.UserFromContext(r.Context())
			if !ok {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrMissingUserContext(nil))
				return
			}
			allowed, err := m.Policy.Allowed(user.Role, object, action)
			if err != nil {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrServerProcess(err))
				return
			}
			if !allowed {
				m.deny(w, r, user, object, action)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PermitOwner is Permit that also admits the caller whose linked FHIR
// resource id equals the URL parameter.
func (m *Middlewares) PermitOwner(object, action, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := models.UserFromContext(r.Context())
			if !ok {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrMissingUserContext(nil))
				return
			}
			allowed, err := m.Policy.Allowed(user.Role, object, action)
			if err != nil {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrServerProcess(err))
				return
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}
			resourceID := chi.URLParam(r, param)
			if resourceID == "" || user.ResourceID != resourceID {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrNotResourceOwner(nil, resourceID, user.ID))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize lets the request through only when the caller holds one of roles.
// The roles are granted on a dedicated object so the check still runs through the policy.
func (m *Middlewares) Authorize(roles ...string) func(http.Handler) http.Handler {
	object := rbac.RoleSetObject(roles...)
	if err := m.Policy.Grant(object, rbac.ActionAccess, roles...); err != nil {
		m.Log.Error("Middlewares.Authorize error granting roles",
			zap.Strings("roles", roles),
			zap.Error(err),
		)
	}
	return m.Permit(object, rbac.ActionAccess)
}

// AuthorizeOwnership admits staff with access to any record, and otherwise only
// the caller whose linked FHIR resource id equals the URL parameter.
func (m *Middlewares) AuthorizeOwnership(param string) func(http.Handler) http.Handler {
	return m.PermitOwner(rbac.ObjectRecords, rbac.ActionAccess, param)
}

func (m *Middlewares) deny(w http.ResponseWriter, r *http.Request, user *models.UserContext, object, action string) {
	required, err := m.Policy.RequiredRoles(object, action)
	if err != nil {
		utils.BuildErrorResponse(m.Log, w, exceptions.ErrServerProcess(err))
		return
	}
	m.Log.Debug("Middlewares.Permit denied",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
		zap.String(constvars.LoggingRoleKey, user.Role),
		zap.String("object", object),
		zap.String("action", action),
	)
	utils.BuildErrorResponse(m.Log, w, exceptions.ErrRoleNotAllowed(nil, user.Role, required))
}

func (m *Middlewares) AuthorizePatient(next http.Handler) http.Handler {
	return m.Authorize(constvars.RolePatient, constvars.RoleAdmin)(next)
}

func (m *Middlewares) AuthorizeProvider(next http.Handler) http.Handler {
	return m.Authorize(constvars.RoleProvider, constvars.RoleAdmin)(next)
}

func (m *Middlewares) AuthorizeAdmin(next http.Handler) http.Handler {
	return m.Authorize(constvars.RoleAdmin)(next)
}
