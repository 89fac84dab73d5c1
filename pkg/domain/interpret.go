package domain

// InterpretationRequest is the payload for POST /interpret-text. Field names
// follow the backend's Spanish wire contract.
type InterpretationRequest struct {
	DreamText        string `json:"texto_sueno"`
	EmotionalContext string `json:"contexto_emocional"`
	Save             bool   `json:"save"`
	Filename         string `json:"filename"`
	Offline          bool   `json:"offline"`
}

// InterpretationResult is the interpretation service's response: the new
// session plus whatever optional extras the backend chose to include.
type InterpretationResult struct {
	SessionID        string `json:"sesion_id"`
	Interpretation   string `json:"interpretacion"`
	ImageURL         string `json:"image_url,omitempty"`
	ImageDescription string `json:"descripcion,omitempty"`
	Style            string `json:"estilo,omitempty"`
	Size             string `json:"size,omitempty"`
	SavedFile        string `json:"saved_file,omitempty"`
}

// GeneratedImage is the response from POST /generate-image. The backend
// answers with either imagen_url or image_url; the api package folds both
// into ImageURL, which may be a plain URL or an inline data payload.
type GeneratedImage struct {
	ImageURL    string `json:"imagen_url"`
	Description string `json:"descripcion,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
}
