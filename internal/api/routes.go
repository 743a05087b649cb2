package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slidecast/slidecast-server/internal/config"
	"github.com/slidecast/slidecast-server/internal/ingest"
	"github.com/slidecast/slidecast-server/internal/media"
	"github.com/slidecast/slidecast-server/internal/session"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Get("/upload", uploadHintHandler())
	r.Post("/upload", uploadHandler(cfg))
	r.Post("/delete-photos", deletePhotosHandler(cfg))
	r.Get("/list-uploads/{sessionID}", listUploadsHandler(cfg))
	r.Get("/frame-preview/{sessionID}/{fileName}", frameHandler(cfg, true))
	r.Get("/get-frame/{sessionID}/{fileName}", frameHandler(cfg, false))

	r.Post("/create-video", createVideoHandler(cfg))
	r.Get("/download-video/{videoID}", downloadVideoHandler(cfg))
	r.Post("/extract-frames", extractFramesHandler(cfg))
	r.Post("/extract-from-youtube", extractFromYouTubeHandler(cfg))

	r.Get("/youtube/auth", youtubeAuthHandler(cfg))
	r.Get("/youtube/callback", youtubeCallbackHandler(cfg))
	r.Post("/youtube/upload", youtubeUploadHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func uploadHintHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, MessageResponse{
			Message: "Upload endpoint. Use POST with multipart 'photos' files and an optional sessionId field.",
		})
	}
}

// writeDomainError maps pipeline errors onto the HTTP error taxonomy:
// validation 400, not-found 404, dependency failures 500 with diagnostics.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
	case errors.Is(err, media.ErrArtifactNotFound):
		WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
	case errors.Is(err, session.ErrInvalidID):
		WriteError(w, http.StatusBadRequest, "invalid session id", "BAD_REQUEST")
	case errors.Is(err, session.ErrBadImage):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, session.ErrInvalidFrameName):
		WriteError(w, http.StatusBadRequest, "invalid file name", "BAD_REQUEST")
	case errors.Is(err, media.ErrNoFrames):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, errConverterUnavailable):
		WriteError(w, http.StatusInternalServerError, err.Error(), "DEPENDENCY_ERROR")
	case errors.Is(err, ingest.ErrToolUnavailable):
		WriteErrorHint(w, http.StatusInternalServerError,
			"video downloader unavailable", "DEPENDENCY_ERROR", err.Error())
	default:
		var exitErr *media.ExitError
		if errors.As(err, &exitErr) {
			WriteError(w, http.StatusInternalServerError, exitErr.Error(), "DEPENDENCY_ERROR")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
