package models

// VideoModel represents a single video model option exposed to the UI.
type VideoModel struct {
	Key          string `json:"key"`
	DisplayName  string `json:"displayName"`
	ShortName    string `json:"shortName"`
	APIName      string `json:"apiName"`
	ProviderID   string `json:"providerId"`
	ProviderName string `json:"providerName"`
	Default      bool   `json:"default"`
}

// VideoModelGroup groups models by their provider for presentation.
type VideoModelGroup struct {
	ProviderID   string       `json:"providerId"`
	ProviderName string       `json:"providerName"`
	Models       []VideoModel `json:"models"`
}
