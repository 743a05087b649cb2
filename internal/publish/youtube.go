package publish

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// youtubeUploader is the production uploader backed by the YouTube Data API.
type youtubeUploader struct{}

func (youtubeUploader) Insert(ctx context.Context, client *http.Client, req Request) (string, error) {
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("create youtube client: %w", err)
	}

	f, err := os.Open(req.FilePath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  "22", // People & Blogs
		},
		Status: &youtube.VideoStatus{PrivacyStatus: req.PrivacyStatus},
	}

	res, err := svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}
	return res.Id, nil
}
