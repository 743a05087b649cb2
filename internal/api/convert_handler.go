package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/slidecast/slidecast-server/internal/ingest"
	"github.com/slidecast/slidecast-server/internal/media"
	"github.com/slidecast/slidecast-server/internal/stream"
)

const defaultFrameDuration = 0.1 // seconds per still

// errConverterUnavailable is surfaced when ffmpeg was not found at startup.
var errConverterUnavailable = errors.New(
	"video converter unavailable: install ffmpeg and restart the server")

func createVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.SessionID == "" {
			WriteError(w, http.StatusBadRequest, "sessionId is required", "BAD_REQUEST")
			return
		}
		if req.FrameDuration == 0 {
			req.FrameDuration = defaultFrameDuration
		}
		if req.FrameDuration < 0 {
			WriteError(w, http.StatusBadRequest, "frameDuration must be positive", "BAD_REQUEST")
			return
		}

		dir, err := cfg.Sessions.Dir(req.SessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		frames, err := cfg.Sessions.ListImages(req.SessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if len(frames) == 0 {
			WriteError(w, http.StatusBadRequest, "no image files found in session", "BAD_REQUEST")
			return
		}

		if cfg.Encoder == nil {
			writeDomainError(w, errConverterUnavailable)
			return
		}

		videoID, err := cfg.Encoder.Encode(r.Context(), media.EncodeRequest{
			SessionDir:    dir,
			Frames:        frames,
			FrameDuration: req.FrameDuration,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, CreateVideoResponse{
			VideoID:    videoID,
			Filename:   videoID + ".mp4",
			Path:       "/download-video/" + videoID,
			ImageCount: len(frames),
			Duration:   req.FrameDuration * float64(len(frames)),
		})
	}
}

func downloadVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "videoID")
		if videoID == "" {
			WriteError(w, http.StatusBadRequest, "video id is required", "BAD_REQUEST")
			return
		}

		path, err := cfg.Artifacts.Resolve(videoID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		opts := stream.Options{
			AttachmentName: videoID + ".mp4",
			ContentType:    "video/mp4",
		}
		if err := cfg.Streamer.ServeFile(w, r, path, opts); err != nil {
			cfg.Logger.Error("video serve error", "error", err, "video_id", videoID)
		}
	}
}

func extractFramesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			videoPath string
			cleanup   func()
			fps       = 1.0
			sessionID string
		)

		if strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
			if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
				WriteError(w, http.StatusBadRequest, "failed to parse multipart form", "BAD_REQUEST")
				return
			}

			file, header, err := r.FormFile("video")
			if err != nil {
				WriteError(w, http.StatusBadRequest, "no video file provided", "BAD_REQUEST")
				return
			}
			defer file.Close()

			if v := r.FormValue("fps"); v != "" {
				if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
					fps = parsed
				}
			}
			sessionID = r.FormValue("sessionId")

			videoPath, cleanup, err = cfg.Resolver.FromUpload(file, header.Filename)
			if err != nil {
				writeDomainError(w, err)
				return
			}
		} else {
			var req ExtractFramesRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoID == "" {
				WriteError(w, http.StatusBadRequest,
					"provide multipart 'video' file or JSON with 'videoId'", "BAD_REQUEST")
				return
			}
			if req.FPS > 0 {
				fps = req.FPS
			}
			sessionID = req.SessionID

			var err error
			videoPath, cleanup, err = cfg.Resolver.FromArtifact(req.VideoID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
		}
		defer cleanup()

		resp, err := decodeIntoSession(cfg, r, videoPath, fps, sessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func extractFromYouTubeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExtractFromYouTubeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			WriteError(w, http.StatusBadRequest, "YouTube URL is required", "BAD_REQUEST")
			return
		}

		if err := ingest.ValidateYouTubeURL(req.URL); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid YouTube URL", "BAD_REQUEST")
			return
		}

		fps := 1.0
		if req.FPS > 0 {
			fps = req.FPS
		}

		videoPath, cleanup, err := cfg.Resolver.FromURL(r.Context(), req.URL)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		defer cleanup()

		resp, err := decodeIntoSession(cfg, r, videoPath, fps, req.SessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// decodeIntoSession samples videoPath into sessionID (created when empty),
// continuing any existing frame numbering, and builds the extraction
// response with a small preview sample.
func decodeIntoSession(cfg ServerConfig, r *http.Request, videoPath string, fps float64, sessionID string) (ExtractFramesResponse, error) {
	if cfg.Decoder == nil {
		return ExtractFramesResponse{}, errConverterUnavailable
	}

	sessionID, err := cfg.Sessions.Ensure(sessionID)
	if err != nil {
		return ExtractFramesResponse{}, err
	}

	unlock := cfg.Sessions.Lock(sessionID)
	defer unlock()

	dir, err := cfg.Sessions.Dir(sessionID)
	if err != nil {
		return ExtractFramesResponse{}, err
	}

	existing, err := cfg.Sessions.ListFrames(sessionID)
	if err != nil {
		return ExtractFramesResponse{}, err
	}

	count, err := cfg.Decoder.Decode(r.Context(), media.DecodeRequest{
		VideoPath:   videoPath,
		FPS:         fps,
		OutputDir:   dir,
		StartNumber: len(existing) + 1,
	})
	if err != nil {
		return ExtractFramesResponse{}, err
	}

	files, err := cfg.Sessions.ListImages(sessionID)
	if err != nil {
		return ExtractFramesResponse{}, err
	}

	sample := files
	if len(sample) > 5 {
		sample = sample[:5]
	}
	previews := make([]string, len(sample))
	for i, f := range sample {
		previews[i] = fmt.Sprintf("/get-frame/%s/%s", sessionID, f)
	}

	return ExtractFramesResponse{
		SessionID:   sessionID,
		Count:       count,
		Folder:      "/uploads/" + sessionID,
		Sample:      sample,
		PreviewURLs: previews,
	}, nil
}
