package domain

// CaptionKind separates human-authored tracks from generated ones.
type CaptionKind string

const (
	// CaptionManual is a track uploaded by the video author.
	CaptionManual CaptionKind = "manual"

	// CaptionAuto is an automatically generated track.
	CaptionAuto CaptionKind = "auto"
)

// CaptionTrack is one caption track offered for a video.
type CaptionTrack struct {
	// Language is the track language code, e.g. "zh-Hant" or "en".
	Language string

	// Kind is manual or auto.
	Kind CaptionKind

	// Format is the subtitle file format, e.g. "vtt".
	Format string

	// URL is where the raw subtitle text is fetched from.
	URL string
}

// VideoInfo is descriptive metadata for a video.
type VideoInfo struct {
	ID           string
	Title        string
	Author       string
	ThumbnailURL string
}
