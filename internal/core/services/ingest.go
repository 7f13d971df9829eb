package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

const (
	videoFormat       = "youtube"
	transcriptFormat  = "txt"
	videoWatchURL     = "https://www.youtube.com/watch?v="
	videoThumbnailURL = "https://img.youtube.com/vi/%s/0.jpg"
	videoTitleFormat  = "YouTube Video %s"
)

// IngestService converts files and video URLs into registered documents.
type IngestService struct {
	normalisers driven.NormaliserRegistry
	captions    driven.CaptionProvider
	blobs       driven.BlobStore
	corpus      *CorpusService
	settings    domain.CaptionSettings

	now   func() time.Time
	newID func() string
}

// NewIngestService creates an ingest service. captions may be nil, in which
// case video ingestion reports ErrNotImplemented.
func NewIngestService(
	normalisers driven.NormaliserRegistry,
	captions driven.CaptionProvider,
	blobs driven.BlobStore,
	corpus *CorpusService,
	settings domain.CaptionSettings,
) *IngestService {
	return &IngestService{
		normalisers: normalisers,
		captions:    captions,
		blobs:       blobs,
		corpus:      corpus,
		settings:    settings,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// SupportedFormats lists accepted file extensions.
func (s *IngestService) SupportedFormats() []string {
	return s.normalisers.SupportedFormats()
}

// IngestFile extracts text from a file, stores the raw bytes under the new
// document id and registers the item. Nothing is stored or registered when
// extraction fails.
func (s *IngestService) IngestFile(ctx context.Context, src domain.FileSource) ([]domain.Document, error) {
	if src.Name == "" {
		return nil, itemError("<unnamed>", domain.ErrInvalidInput)
	}

	format := fileFormat(src.Name)
	if !s.normalisers.Supports(format) {
		return nil, itemError(src.Name, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Ext(src.Name)))
	}

	result, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		URI:     src.Name,
		Format:  format,
		Content: src.Content,
	})
	if err != nil {
		return nil, itemError(src.Name, extractionError(err))
	}

	entry := domain.CorpusEntry{
		ID:       s.newID(),
		Name:     src.Name,
		Type:     domain.DocumentTypeFile,
		Format:   format,
		Category: strings.TrimSpace(src.Category),
		Tags:     domain.NormaliseTags(src.Tags),
		AddedAt:  s.now(),
	}

	docs := buildDocuments(entry, result)
	if len(docs) == 0 {
		return nil, itemError(src.Name, fmt.Errorf("%w: no text extracted", domain.ErrExtractionFailed))
	}
	for _, w := range result.Warnings {
		logger.Warn("%s: %s", src.Name, w)
	}

	entry.Path, err = s.blobs.Put(ctx, driven.BlobDocuments, entry.ID+"."+format, src.Content)
	if err != nil {
		return nil, itemError(src.Name, fmt.Errorf("store file: %w", err))
	}
	if err := s.register(ctx, entry); err != nil {
		return nil, itemError(src.Name, err)
	}

	logger.Info("ingested %s as %s (%d document(s))", src.Name, entry.ID, len(docs))
	return docs, nil
}

// IngestVideo selects a caption track for the video, stores the parsed
// transcript and registers the item.
func (s *IngestService) IngestVideo(ctx context.Context, src domain.VideoSource) ([]domain.Document, error) {
	url := strings.TrimSpace(src.URL)
	if s.captions == nil {
		return nil, itemError(url, domain.ErrNotImplemented)
	}

	videoID, ok := ExtractVideoID(url)
	if !ok {
		return nil, itemError(url, domain.ErrInvalidVideoURL)
	}

	tracks, err := s.captions.ListTracks(ctx, videoID)
	if err != nil {
		return nil, itemError(url, captionError("list tracks", err))
	}
	track, ok := SelectTrack(tracks, s.settings.PrimaryLanguage, s.settings.SecondaryLanguage)
	if !ok {
		return nil, itemError(url, domain.ErrNoCaptionsAvailable)
	}
	logger.Debug("video %s: using %s %s captions", videoID, track.Kind, track.Language)

	raw, err := s.captions.Fetch(ctx, track.URL)
	if err != nil {
		return nil, itemError(url, captionError("fetch captions", err))
	}

	result, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		URI:     videoWatchURL + videoID,
		Format:  track.Format,
		Content: raw,
	})
	if err != nil {
		return nil, itemError(url, extractionError(err))
	}

	info := s.videoInfo(ctx, videoID)
	entry := domain.CorpusEntry{
		ID:           s.newID(),
		Name:         info.Title,
		Type:         domain.DocumentTypeVideo,
		Format:       videoFormat,
		Category:     strings.TrimSpace(src.Category),
		Tags:         domain.NormaliseTags(src.Tags),
		AddedAt:      s.now(),
		VideoID:      videoID,
		VideoURL:     url,
		ThumbnailURL: info.ThumbnailURL,
		Author:       info.Author,
	}

	docs := buildDocuments(entry, result)
	if len(docs) == 0 {
		return nil, itemError(url, fmt.Errorf("%w: empty transcript", domain.ErrExtractionFailed))
	}

	entry.Path, err = s.blobs.Put(ctx, driven.BlobVideos, entry.ID+"."+transcriptFormat, []byte(docs[0].Content))
	if err != nil {
		return nil, itemError(url, fmt.Errorf("store transcript: %w", err))
	}
	if err := s.register(ctx, entry); err != nil {
		return nil, itemError(url, err)
	}

	logger.Info("ingested video %s as %s", videoID, entry.ID)
	return docs, nil
}

// IngestBatch ingests each request independently.
func (s *IngestService) IngestBatch(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestReport {
	reports := make([]domain.IngestReport, 0, len(reqs))
	for _, req := range reqs {
		report := domain.IngestReport{Item: req.Label()}

		switch {
		case ctx.Err() != nil:
			report.Err = itemError(report.Item, ctx.Err())
		case req.File != nil:
			report.Documents, report.Err = s.IngestFile(ctx, *req.File)
		case req.Video != nil:
			report.Documents, report.Err = s.IngestVideo(ctx, *req.Video)
		default:
			report.Err = itemError(report.Item, domain.ErrInvalidInput)
		}

		if report.Err != nil {
			logger.Warn("skipping %s: %v", report.Item, report.Err)
		}
		reports = append(reports, report)
	}
	return reports
}

// Load re-reads the stored content of a registered entry. It is used by
// index rebuilds.
func (s *IngestService) Load(ctx context.Context, entry domain.CorpusEntry) ([]domain.Document, error) {
	data, err := s.blobs.Get(ctx, entry.Path)
	if err != nil {
		return nil, itemError(entry.Name, fmt.Errorf("%w: read %s: %w", domain.ErrExtractionFailed, entry.Path, err))
	}

	format := entry.Format
	if entry.Type == domain.DocumentTypeVideo {
		format = transcriptFormat
	}

	result, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		URI:     entry.Name,
		Format:  format,
		Content: data,
	})
	if err != nil {
		return nil, itemError(entry.Name, extractionError(err))
	}

	docs := buildDocuments(entry, result)
	if len(docs) == 0 {
		return nil, itemError(entry.Name, fmt.Errorf("%w: no text extracted", domain.ErrExtractionFailed))
	}
	return docs, nil
}

func (s *IngestService) register(ctx context.Context, entry domain.CorpusEntry) error {
	if err := s.corpus.Register(ctx, entry); err != nil {
		if delErr := s.blobs.Delete(ctx, entry.Path); delErr != nil {
			logger.Warn("cleanup %s: %v", entry.Path, delErr)
		}
		return err
	}
	return nil
}

// videoInfo fetches descriptive metadata, filling gaps with placeholders.
func (s *IngestService) videoInfo(ctx context.Context, videoID string) domain.VideoInfo {
	info := domain.VideoInfo{ID: videoID}
	if got, err := s.captions.VideoInfo(ctx, videoID); err != nil {
		logger.Warn("video %s: info unavailable: %v", videoID, err)
	} else if got != nil {
		info = *got
	}

	if info.Title == "" {
		info.Title = fmt.Sprintf(videoTitleFormat, videoID)
	}
	if info.Author == "" {
		info.Author = "Unknown"
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = fmt.Sprintf(videoThumbnailURL, videoID)
	}
	return info
}

func fileFormat(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// extractionError maps normaliser failures onto the ingestion taxonomy.
func extractionError(err error) error {
	if errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrExtractionFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
}

// captionError classifies a caption provider failure. Missing captions and
// cancellation pass through; anything else means the provider failed.
func captionError(op string, err error) error {
	if errors.Is(err, domain.ErrNoCaptionsAvailable) || isContextErr(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrProviderUnavailable, op, err)
}

func itemError(item string, err error) error {
	return &domain.ItemError{Item: item, Err: err}
}
