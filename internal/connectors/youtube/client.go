package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.CaptionProvider = (*Client)(nil)

const (
	// DefaultBinary is the yt-dlp executable name.
	DefaultBinary = "yt-dlp"

	// DefaultTimeout bounds each caption download.
	DefaultTimeout = 30 * time.Second

	// maxCaptionBytes caps a single caption download.
	maxCaptionBytes = 16 << 20

	watchURL = "https://www.youtube.com/watch?v="
)

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrToolNotFound
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Client is a CaptionProvider backed by yt-dlp for probing and plain HTTP
// for caption downloads. Probe results are cached per video id.
type Client struct {
	runner  CommandRunner
	binary  string
	http    *http.Client
	limiter *RateLimiter

	mu     sync.Mutex
	probes map[string]*probe
}

// Option configures the client.
type Option func(*Client)

// WithRunner replaces the command runner.
func WithRunner(r CommandRunner) Option {
	return func(c *Client) { c.runner = r }
}

// WithHTTPClient replaces the HTTP client used for caption downloads.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimiter replaces the rate limiter.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithBinary sets the yt-dlp executable path.
func WithBinary(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.binary = path
		}
	}
}

// NewClient creates a caption client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		runner:  execRunner{},
		binary:  DefaultBinary,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: NewRateLimiter(),
		probes:  make(map[string]*probe),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// probe is the subset of `yt-dlp -J` output used here.
type probe struct {
	ID                string                   `json:"id"`
	Title             string                   `json:"title"`
	Uploader          string                   `json:"uploader"`
	Channel           string                   `json:"channel"`
	Thumbnail         string                   `json:"thumbnail"`
	Subtitles         map[string][]subtitleFmt `json:"subtitles"`
	AutomaticCaptions map[string][]subtitleFmt `json:"automatic_captions"`
}

type subtitleFmt struct {
	Ext  string `json:"ext"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// ListTracks returns manual tracks followed by automatic ones, each sorted
// by language. Only the first entry per (language, format) is kept.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]domain.CaptionTrack, error) {
	p, err := c.probe(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tracks := collectTracks(p.Subtitles, domain.CaptionManual)
	tracks = append(tracks, collectTracks(p.AutomaticCaptions, domain.CaptionAuto)...)
	return tracks, nil
}

// VideoInfo returns the title, uploader and thumbnail of the video.
func (c *Client) VideoInfo(ctx context.Context, videoID string) (*domain.VideoInfo, error) {
	p, err := c.probe(ctx, videoID)
	if err != nil {
		return nil, err
	}

	author := p.Uploader
	if author == "" {
		author = p.Channel
	}
	return &domain.VideoInfo{
		ID:           videoID,
		Title:        p.Title,
		Author:       author,
		ThumbnailURL: p.Thumbnail,
	}, nil
}

// Fetch downloads a caption track.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: fetch captions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionBytes))
	if err != nil {
		return nil, fmt.Errorf("youtube: read captions: %w", err)
	}
	return body, nil
}

func (c *Client) probe(ctx context.Context, videoID string) (*probe, error) {
	c.mu.Lock()
	p, ok := c.probes[videoID]
	c.mu.Unlock()
	if ok {
		return p, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	logger.Debug("probing video %s", videoID)
	out, err := c.runner.Run(ctx, c.binary, "-J", "--skip-download", "--no-warnings", watchURL+videoID)
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("youtube: probe %s: %w", videoID, err)
	}

	p = &probe{}
	if err := json.Unmarshal(out, p); err != nil {
		return nil, fmt.Errorf("youtube: decode probe: %w", err)
	}
	if p.ID == "" {
		return nil, ErrVideoUnavailable
	}

	c.mu.Lock()
	c.probes[videoID] = p
	c.mu.Unlock()
	return p, nil
}

func collectTracks(byLang map[string][]subtitleFmt, kind domain.CaptionKind) []domain.CaptionTrack {
	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	var tracks []domain.CaptionTrack
	for _, lang := range langs {
		seen := make(map[string]bool)
		for _, f := range byLang[lang] {
			if f.URL == "" || seen[f.Ext] {
				continue
			}
			seen[f.Ext] = true
			tracks = append(tracks, domain.CaptionTrack{
				Language: lang,
				Kind:     kind,
				Format:   f.Ext,
				URL:      f.URL,
			})
		}
	}
	return tracks
}

func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
