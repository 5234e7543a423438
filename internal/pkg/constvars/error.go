package constvars

// Validation messages for users, map it with respective tag field
var CustomValidationErrorMessages = map[string]string{
	"required":      "is required",
	"email":         "must be a valid email",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
	"gte":           "must be greater than or equal to %s",
	"lte":           "must be less than or equal to %s",
	"oneof":         "must be one of [%s]",
	"datetime":      "must be a date formatted as %s",
	"resource_type": "must be a FHIR resource type name",
	"fhir_date":     "must be a FHIR date (YYYY, YYYY-MM or YYYY-MM-DD)",
}

// Tags whose message template takes the tag parameter
var TagsWithParams = map[string]bool{
	"min":      true,
	"max":      true,
	"gte":      true,
	"lte":      true,
	"oneof":    true,
	"datetime": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientAccessTokenRequired           = "access token required"
	ErrClientAccessDeniedRequiredRoles     = "Access denied. Required roles: %s"
	ErrClientAccessDeniedNotOwner          = "Access denied. You can only access your own records"
	ErrClientResourceNotFound              = "%s not found"
	ErrClientFailedToFetchResource         = "failed to fetch %s"
	ErrClientFailedToCreateResource        = "failed to create %s"
	ErrClientFailedToUpdateResource        = "failed to update %s"
	ErrClientFailedToDeleteResource        = "failed to delete %s"
	ErrClientRouteNotFound                 = "route not found"
	ErrClientTooManyRequests               = "too many requests, please slow down"
)

// Error messages for developers
const (
	ErrDevInvalidInput            = "invalid input"
	ErrDevValidationFailed        = "validation failed"
	ErrDevCannotParseJSON         = "cannot parse JSON"
	ErrDevCannotMarshalJSON       = "cannot marshal JSON"
	ErrDevReadBody                = "cannot read request body"
	ErrDevRateLimited             = "rate limit exceeded for %s"
	ErrDevCreateHTTPRequest       = "failed to create HTTP request"
	ErrDevSendHTTPRequest         = "failed to send HTTP request"
	ErrDevReadHTTPResponse        = "failed to read HTTP response"
	ErrDevServerProcess           = "server failed to process the request"
	ErrDevServerDeadlineExceeded  = "deadline exceeded"
	ErrDevMissingRequestID        = "request id not found in context"
	ErrDevMissingUserContext      = "user context not found in request context"
	ErrDevURLParamIDValidation    = "url param %s failed validation"
	ErrDevUnsupportedResourceType = "unsupported resource type %s"
	ErrDevResourceTypeMismatch    = "body resourceType %s does not match route resource %s"
	ErrDevPanicRecovered          = "panic recovered"

	// Authentication messages
	ErrDevAuthTokenMissing          = "token missing"
	ErrDevAuthTokenInvalidOrExpired = "token invalid or expired"
	ErrDevAuthTokenRevoked          = "token revoked"
	ErrDevAuthWrongTokenType        = "wrong token type %s"
	ErrDevAuthGenerateToken         = "failed to generate token"
	ErrDevAuthRoleNotAllowed        = "role %s not in allow list %s"
	ErrDevAuthNotOwner              = "resource id %s does not belong to user %s"

	// Medplum messages
	ErrDevMedplumLogin              = "failed to login to medplum with client credentials"
	ErrDevMedplumGetFHIRResource    = "failed to get FHIR resource %s from medplum"
	ErrDevMedplumSearchFHIRResource = "failed to search FHIR resource %s from medplum"
	ErrDevMedplumCreateFHIRResource = "failed to create FHIR resource %s on medplum"
	ErrDevMedplumUpdateFHIRResource = "failed to update FHIR resource %s on medplum"
	ErrDevMedplumDeleteFHIRResource = "failed to delete FHIR resource %s on medplum"
	ErrDevMedplumDecodeResponse     = "failed to decode FHIR response for %s from medplum"

	// Redis messages
	ErrDevRedisGetData = "failed to get data from redis"
	ErrDevRedisSetData = "failed to set data into redis"

	// Mongo messages
	ErrDevDBFailedToInsertDocument = "failed to insert document into database"

	// RabbitMQ messages
	ErrDevRabbitMQPublishMessage = "failed to publish message to exchange %s"
)

const (
	ErrFileLocationUnknown = "unknown file"
	ErrLineLocationUnknown = 0
	ErrFunctionNameUnknown = "unknown function"
)
