package consent

// WebhookRequest is the gateway's button-click callback payload.
type WebhookRequest struct {
	EventType string `json:"event_type" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	ButtonID  string `json:"button_id"`
}

type WebhookResponse struct {
	Result string `json:"result"`
}

// OptInRequest asks for the consent handshake to be sent to one resident.
type OptInRequest struct {
	ResidentID int `json:"resident_id" binding:"required"`
}

type OptInResponse struct {
	Status string `json:"status"`
}
