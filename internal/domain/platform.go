package domain

// Platform identifies one of the supported source services.
type Platform string

const (
	PlatformYouTube      Platform = "youtube"
	PlatformYouTubeMusic Platform = "youtube-music"
	PlatformFacebook     Platform = "facebook"
	PlatformInstagram    Platform = "instagram"
	PlatformTikTok       Platform = "tiktok"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{
	PlatformYouTube,
	PlatformYouTubeMusic,
	PlatformFacebook,
	PlatformInstagram,
	PlatformTikTok,
}

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// Quality presets offered by the YouTube selector.
var (
	YouTubeVideoQualities = []string{"2160", "1440", "1080", "720", "480", "360"}
	YouTubeAudioQualities = []string{"320", "256", "192", "128"}
)

const (
	FormatVideo = "video"
	FormatAudio = "audio"

	defaultVideoQuality = "1080"
	defaultAudioQuality = "256"
)

// QualityOptions returns the selectable qualities and the preselected one for
// a platform and format.
func QualityOptions(p Platform, format string) (options []string, def string) {
	switch {
	case p == PlatformYouTube && format == FormatAudio, p == PlatformYouTubeMusic:
		return YouTubeAudioQualities, defaultAudioQuality
	case p == PlatformYouTube:
		return YouTubeVideoQualities, defaultVideoQuality
	default:
		return nil, defaultVideoQuality
	}
}
