package models

// OutputState is what the primary output panel shows: the latest submission
// and, once it finishes, its video or error.
type OutputState struct {
	TrackingID     string `json:"trackingId,omitempty"`
	Handle         string `json:"videoHandle,omitempty"`
	IsLoading      bool   `json:"isLoading"`
	LoadingMessage string `json:"loadingMessage"`
	Error          string `json:"error,omitempty"`
}
