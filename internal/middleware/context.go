package middleware

// Context keys used to store authentication metadata.
const (
	ContextKeyClientID  = "client_id"
	ContextKeyScopes    = "scopes"
	ContextKeyRequestID = "request_id"
)
