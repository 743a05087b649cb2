package api

// JSON field names follow the shapes the web UI consumes.

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UploadResponse struct {
	SessionID string   `json:"sessionId"`
	Files     []string `json:"files"`
	Count     int      `json:"count"`
}

type DeletePhotosRequest struct {
	SessionID string   `json:"sessionId"`
	Files     []string `json:"files"`
}

type DeletePhotosResponse struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

type ListUploadsResponse struct {
	SessionID string   `json:"sessionId"`
	Files     []string `json:"files"`
	Count     int      `json:"count"`
}

type CreateVideoRequest struct {
	SessionID     string  `json:"sessionId"`
	FrameDuration float64 `json:"frameDuration"`
}

type CreateVideoResponse struct {
	VideoID    string  `json:"videoId"`
	Filename   string  `json:"filename"`
	Path       string  `json:"path"`
	ImageCount int     `json:"imageCount"`
	Duration   float64 `json:"duration"`
}

type ExtractFramesRequest struct {
	VideoID   string  `json:"videoId"`
	FPS       float64 `json:"fps"`
	SessionID string  `json:"sessionId,omitempty"`
}

type ExtractFramesResponse struct {
	SessionID   string   `json:"sessionId"`
	Count       int      `json:"count"`
	Folder      string   `json:"folder"`
	Sample      []string `json:"sample"`
	PreviewURLs []string `json:"previewUrls"`
}

type ExtractFromYouTubeRequest struct {
	URL       string  `json:"url"`
	FPS       float64 `json:"fps"`
	SessionID string  `json:"sessionId,omitempty"`
}

type AuthURLResponse struct {
	URL string `json:"url"`
}

type CallbackResponse struct {
	OK bool `json:"ok"`
}

type PublishRequest struct {
	VideoID       string   `json:"videoId"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	PrivacyStatus string   `json:"privacyStatus"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Hint  string `json:"hint,omitempty"`
}
