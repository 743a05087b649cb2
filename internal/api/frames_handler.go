package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/slidecast/slidecast-server/internal/session"
	"github.com/slidecast/slidecast-server/internal/stream"
)

const (
	maxUploadBytes    = 1 << 30 // 1 GB per request
	multipartMemLimit = 64 << 20
)

func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
			WriteError(w, http.StatusBadRequest, "failed to parse multipart form", "BAD_REQUEST")
			return
		}

		files := r.MultipartForm.File["photos"]
		if len(files) == 0 {
			WriteError(w, http.StatusBadRequest, "no files uploaded", "BAD_REQUEST")
			return
		}

		images := make([]session.SourceImage, 0, len(files))
		for _, fh := range files {
			contentType := fh.Header.Get("Content-Type")
			if !strings.HasPrefix(contentType, "image/") && !session.IsImageFile(fh.Filename) {
				WriteError(w, http.StatusBadRequest,
					fmt.Sprintf("file %s is not an image", fh.Filename), "BAD_REQUEST")
				return
			}

			f, err := fh.Open()
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to read upload", "INTERNAL_ERROR")
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to read upload", "INTERNAL_ERROR")
				return
			}

			images = append(images, session.SourceImage{Name: fh.Filename, Data: data})
		}

		sessionID, err := cfg.Sessions.Ensure(r.FormValue("sessionId"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		assigned, err := cfg.Sessions.Append(sessionID, images)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, UploadResponse{
			SessionID: sessionID,
			Files:     assigned,
			Count:     len(assigned),
		})
	}
}

func deletePhotosHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DeletePhotosRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.SessionID == "" || len(req.Files) == 0 {
			WriteError(w, http.StatusBadRequest, "sessionId and files[] are required", "BAD_REQUEST")
			return
		}

		remaining, err := cfg.Sessions.Delete(req.SessionID, req.Files)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, DeletePhotosResponse{
			Files: remaining,
			Count: len(remaining),
		})
	}
}

func listUploadsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		if sessionID == "" {
			WriteError(w, http.StatusBadRequest, "sessionId is required", "BAD_REQUEST")
			return
		}

		files, err := cfg.Sessions.ListImages(sessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ListUploadsResponse{
			SessionID: sessionID,
			Files:     files,
			Count:     len(files),
		})
	}
}

// frameHandler serves one stored frame. Preview responses are immutable:
// renumbering never rewrites frame content under the same name without the
// set itself changing, and previews are keyed by session+name.
func frameHandler(cfg ServerConfig, preview bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		fileName := chi.URLParam(r, "fileName")
		if sessionID == "" || fileName == "" {
			WriteError(w, http.StatusBadRequest, "session id and file name are required", "BAD_REQUEST")
			return
		}

		path, err := cfg.Sessions.FramePath(sessionID, fileName)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		opts := stream.Options{}
		if preview {
			opts.CacheControl = "public, max-age=31536000, immutable"
		}

		if err := cfg.Streamer.ServeFile(w, r, path, opts); err != nil {
			cfg.Logger.Error("frame serve error", "error", err, "session_id", sessionID, "file", fileName)
		}
	}
}
