package responses

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type CurrentUser struct {
	ID         string `json:"id"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role"`
	ResourceID string `json:"resourceId,omitempty"`
}

type AccessRule struct {
	Role   string `json:"role"`
	Object string `json:"object"`
	Action string `json:"action"`
}
