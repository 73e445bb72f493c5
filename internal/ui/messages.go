package ui

import (
	"errors"

	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

// Status texts shown during a submission.
const (
	MsgEmptyURL    = "❌ Please enter a valid URL"
	MsgInvalidURL  = "❌ Invalid URL format. Please check and try again."
	MsgConnecting  = "⏳ Connecting to server..."
	MsgDownloading = "📥 Downloading... This may take a moment."
	MsgSuccess     = "✅ Download complete! Check your downloads folder."

	msgFailedPrefix = "❌ Download failed: "
	msgNetwork      = "Cannot connect to server. Please check if the backend is running."
	msgNotFound     = "Video not found or unavailable."
	msgRestricted   = "This content is private or restricted."

	MsgOnline   = "🟢 Server Online"
	MsgOffline  = "🔴 Server Offline"
	MsgChecking = "Checking server..."
)

// FailureMessage renders a submission error for the status line.
func FailureMessage(err error) string {
	var e *errpkg.Error
	if !errors.As(err, &e) {
		return msgFailedPrefix + err.Error()
	}

	switch e.Kind {
	case errpkg.KindValidation:
		if errors.Is(e, errpkg.ErrEmptyURL) {
			return MsgEmptyURL
		}
		if errors.Is(e, errpkg.ErrInvalidURL) {
			return MsgInvalidURL
		}
		return "❌ " + e.Message
	case errpkg.KindNetwork:
		return msgFailedPrefix + msgNetwork
	case errpkg.KindNotFound:
		return msgFailedPrefix + msgNotFound
	case errpkg.KindRestricted:
		return msgFailedPrefix + msgRestricted
	}

	if e.Message == "" {
		return msgFailedPrefix + errpkg.DefaultServerMessage
	}
	return msgFailedPrefix + e.Message
}
