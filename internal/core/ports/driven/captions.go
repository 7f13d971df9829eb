package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// CaptionProvider lists and fetches caption tracks for videos.
type CaptionProvider interface {
	// ListTracks returns every caption track available for the video.
	// An empty slice means the video has no captions. Errors wrapping
	// domain.ErrNoCaptionsAvailable mean the video itself has nothing to
	// offer; any other error is a provider failure.
	ListTracks(ctx context.Context, videoID string) ([]domain.CaptionTrack, error)

	// Fetch downloads the raw subtitle text of a track.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// VideoInfo returns descriptive metadata for the video.
	VideoInfo(ctx context.Context, videoID string) (*domain.VideoInfo, error)
}
