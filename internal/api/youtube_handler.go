package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slidecast/slidecast-server/internal/publish"
)

func youtubeAuthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := cfg.Publisher.AuthURL()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "DEPENDENCY_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, AuthURLResponse{URL: url})
	}
}

func youtubeCallbackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if provErr := q.Get("error"); provErr != "" {
			WriteError(w, http.StatusBadRequest, "authorization denied: "+provErr, "BAD_REQUEST")
			return
		}

		code := q.Get("code")
		if code == "" {
			WriteError(w, http.StatusBadRequest, "missing authorization code", "BAD_REQUEST")
			return
		}

		if err := cfg.Publisher.HandleCallback(r.Context(), code, q.Get("state")); err != nil {
			cfg.Logger.Error("oauth callback failed", "error", err)
			if errors.Is(err, publish.ErrStateMismatch) {
				WriteError(w, http.StatusBadRequest, "state parameter mismatch", "BAD_REQUEST")
				return
			}
			WriteError(w, http.StatusInternalServerError, "token exchange failed", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, CallbackResponse{OK: true})
	}
}

func youtubeUploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PublishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.VideoID == "" {
			WriteError(w, http.StatusBadRequest, "videoId is required", "BAD_REQUEST")
			return
		}

		path, err := cfg.Artifacts.Resolve(req.VideoID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		result, err := cfg.Publisher.Publish(r.Context(), publish.Request{
			FilePath:      path,
			Title:         req.Title,
			Description:   req.Description,
			Tags:          req.Tags,
			PrivacyStatus: req.PrivacyStatus,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, result)
	}
}
