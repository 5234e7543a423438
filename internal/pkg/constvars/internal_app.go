package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_USER_KEY                 ContextKey = "user"
	CONTEXT_TOKEN_ID_KEY             ContextKey = "token_id"
	CONTEXT_TOKEN_EXPIRY_KEY         ContextKey = "token_expiry"
)

const (
	REQUEST_ID_PREFIX = "TLH_SVC_"
)

const (
	RoleAdmin    = "admin"
	RoleProvider = "provider"
	RolePatient  = "patient"
)

const (
	GatewayModeMock = "mock"
	GatewayModeLive = "live"
)

const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

const (
	DefaultPage            = 1
	DefaultPageLimit       = 10
	MaxPageLimit           = 100
	MaxPage                = 100000
	SortOrderAscending     = "asc"
	SortOrderDescending    = "desc"
	AppPaginationUrlFormat = "%s?page=%d&limit=%d"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const (
	UpstreamStatusUnknown = "unknown"
	UpstreamStatusUp      = "up"
	UpstreamStatusDown    = "down"
)
