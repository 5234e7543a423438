package constvars

const (
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	GetResourceListSuccessMessage = "%s retrieved successfully"
	GetResourceSuccessMessage     = "%s retrieved successfully"
	CreateResourceSuccessMessage  = "%s created successfully"
	UpdateResourceSuccessMessage  = "%s updated successfully"
	DeleteResourceSuccessMessage  = "%s deleted successfully"

	RefreshTokenSuccessMessage = "token refreshed successfully"
	LogoutSuccessMessage       = "successfully logout"
	GetCurrentUserSuccess      = "current user retrieved successfully"
	GetAccessRulesSuccess      = "access rules retrieved successfully"

	HealthStatusOK = "OK"
)
