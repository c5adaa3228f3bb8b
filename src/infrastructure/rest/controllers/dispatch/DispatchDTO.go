package dispatch

// BatchRequest is the trigger API body sent by the UI or automation.
type BatchRequest struct {
	CondominiumID int   `json:"condominium_id" binding:"required"`
	ResidentIDs   []int `json:"resident_ids" binding:"required,min=1"`
}

type BatchResponse struct {
	BatchID      string   `json:"batch_id"`
	LogIDs       []string `json:"log_ids"`
	CreatedCount int      `json:"created_count"`
}

// StatusRequest polls a set of job ids.
type StatusRequest struct {
	LogIDs []string `json:"log_ids" binding:"required,min=1"`
}

type StatusItem struct {
	ID           string `json:"id"`
	ResidentID   int    `json:"resident_id"`
	Status       string `json:"status"`
	Attempts     int    `json:"attempts"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type StatusResponse struct {
	Items []StatusItem `json:"items"`
}

type BatchProgressRequest struct {
	BatchID string `uri:"batch_id" binding:"required"`
}

type BatchProgressResponse struct {
	BatchID string       `json:"batch_id"`
	Total   int          `json:"total"`
	Pending int          `json:"pending"`
	Sending int          `json:"sending"`
	Sent    int          `json:"sent"`
	Errored int          `json:"errored"`
	Items   []StatusItem `json:"items"`
}

type ProcessResponse struct {
	ProcessedCount int `json:"processed_count"`
}
