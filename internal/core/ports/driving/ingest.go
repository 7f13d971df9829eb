package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestService turns uploaded files and video URLs into registered documents.
type IngestService interface {
	// IngestFile extracts, stores and registers a file.
	IngestFile(ctx context.Context, src domain.FileSource) ([]domain.Document, error)

	// IngestVideo fetches captions for a video URL and registers the transcript.
	IngestVideo(ctx context.Context, src domain.VideoSource) ([]domain.Document, error)

	// IngestBatch ingests every request. A failing item never aborts the
	// others; its error is reported in the matching IngestReport.
	IngestBatch(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestReport

	// SupportedFormats lists accepted file extensions.
	SupportedFormats() []string
}
