package domain

// FormSnapshot is what the user entered for one submission.
type FormSnapshot struct {
	URL         string `yaml:"url"`
	Format      string `yaml:"format"`
	Quality     string `yaml:"quality"`
	AudioFormat string `yaml:"audio_format"`
	Subtitles   bool   `yaml:"subtitles"`
	Metadata    bool   `yaml:"metadata"`
	Carousel    bool   `yaml:"carousel"`
	Cover       bool   `yaml:"cover"`
}

// DownloadRequest is the JSON body sent to the download endpoint.
// Optional fields are set only for the platforms that own them.
type DownloadRequest struct {
	URL             string   `json:"url" validate:"required,web_url"`
	Platform        Platform `json:"platform" validate:"required,platform"`
	Format          string   `json:"format"`
	Quality         string   `json:"quality"`
	AudioFormat     string   `json:"audio_format,omitempty"`
	Subtitles       *bool    `json:"subtitles,omitempty"`
	Metadata        *bool    `json:"metadata,omitempty"`
	Carousel        *bool    `json:"carousel,omitempty"`
	RemoveWatermark *bool    `json:"remove_watermark,omitempty"`
	Cover           *bool    `json:"cover,omitempty"`
}

// InfoRequest is the body of the preview and formats endpoints.
type InfoRequest struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform,omitempty"`
}

// VideoInfo is the preview returned by the info endpoint.
type VideoInfo struct {
	Title     string       `json:"title"`
	Duration  float64      `json:"duration"`
	Thumbnail string       `json:"thumbnail"`
	Uploader  string       `json:"uploader"`
	Formats   []FormatInfo `json:"formats"`
}

// FormatInfo describes one format the source offers.
type FormatInfo struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Quality    string  `json:"quality"`
	FileSize   int64   `json:"filesize"`
	Resolution string  `json:"resolution,omitempty"`
	FPS        float64 `json:"fps,omitempty"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
}

// FormatList is the response of the formats endpoint.
type FormatList struct {
	Title     string       `json:"title"`
	Thumbnail string       `json:"thumbnail"`
	Duration  float64      `json:"duration"`
	Formats   []FormatInfo `json:"formats"`
}

// ErrorResponse is the JSON body of a failed backend call.
type ErrorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}
