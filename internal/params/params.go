// Package params turns a form snapshot into the platform-specific body of a
// download request.
package params

import (
	"fmt"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

// TikTokWatermarkFreeQuality is the quality at which the watermark-free
// variant is requested.
const TikTokWatermarkFreeQuality = "1080"

// Build returns the request for platform p. Only the fields the platform owns
// are set; url and platform are attached by the caller.
func Build(p domain.Platform, form domain.FormSnapshot) (*domain.DownloadRequest, error) {
	req := &domain.DownloadRequest{}

	switch p {
	case domain.PlatformYouTube:
		req.Format = orDefault(form.Format, domain.FormatVideo)
		req.Quality = quality(p, req.Format, form.Quality)
		req.Subtitles = boolPtr(form.Subtitles)

	case domain.PlatformYouTubeMusic:
		req.Format = domain.FormatAudio
		req.AudioFormat = orDefault(form.AudioFormat, "mp3")
		req.Quality = quality(p, req.Format, form.Quality)
		req.Metadata = boolPtr(form.Metadata)

	case domain.PlatformFacebook:
		req.Format = domain.FormatVideo
		req.Quality = quality(p, req.Format, form.Quality)

	case domain.PlatformInstagram:
		req.Format = domain.FormatVideo
		req.Quality = quality(p, req.Format, form.Quality)
		req.Carousel = boolPtr(form.Carousel)

	case domain.PlatformTikTok:
		req.Format = orDefault(form.Format, domain.FormatVideo)
		req.Quality = quality(p, req.Format, form.Quality)
		req.RemoveWatermark = boolPtr(req.Quality == TikTokWatermarkFreeQuality)
		req.Cover = boolPtr(form.Cover)

	default:
		return nil, fmt.Errorf("%w: %q", errpkg.ErrUnsupportedPlatform, p)
	}

	return req, nil
}

func quality(p domain.Platform, format, q string) string {
	if q != "" {
		return q
	}
	_, def := domain.QualityOptions(p, format)
	return def
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func boolPtr(b bool) *bool {
	return &b
}
