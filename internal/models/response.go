package models

type GetUploadURLResponse struct {
	PutURLMain  string    `json:"putUrlMain"`
	PutURLThumb string    `json:"putUrlThumb,omitempty"`
	TmpKeyMain  string    `json:"tmpKeyMain"`
	TmpKeyThumb string    `json:"tmpKeyThumb,omitempty"`
	RecordDraft MediaItem `json:"recordDraft"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type MediaListResponse struct {
	Items []MediaItem `json:"items"`
}

type MediaURLResponse struct {
	URL       string `json:"url"`
	ThumbURL  string `json:"thumbUrl,omitempty"`
	ExpiresIn int    `json:"expiresIn"`
}

type QuotaResponse struct {
	Count int `json:"count"`
	Max   int `json:"max"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
