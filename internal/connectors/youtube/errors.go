package youtube

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// YouTube-specific errors.
var (
	// ErrToolNotFound indicates yt-dlp is not installed.
	ErrToolNotFound = errors.New("youtube: yt-dlp not found in PATH")

	// ErrVideoUnavailable indicates the probe returned no usable data.
	ErrVideoUnavailable = fmt.Errorf("youtube: video unavailable: %w", domain.ErrNoCaptionsAvailable)
)

// HTTPError is a non-2xx response while fetching a caption track.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("youtube: caption fetch returned %d (URL: %s)", e.StatusCode, e.URL)
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 429
}
