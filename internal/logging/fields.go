package logging

const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Set on the gin context by the auth middleware.
	FieldUserID = "user_id"

	FieldService   = "service"
	FieldComponent = "component"
	FieldChatID    = "chat_id"
	FieldStage     = "stage"
)
