package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the highest priority normaliser
// that handles their format.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a normaliser. Normalisers are kept ordered by priority,
// highest first; equal priorities keep registration order.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise runs the best matching normaliser for raw.Format.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	n := r.find(raw.Format)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, raw.Format)
	}
	return n.Normalise(ctx, raw)
}

// Supports reports whether any normaliser handles the format.
func (r *Registry) Supports(format string) bool {
	return r.find(format) != nil
}

// SupportedFormats returns every handled format, sorted.
func (r *Registry) SupportedFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var formats []string
	for _, n := range r.normalisers {
		for _, f := range n.SupportedFormats() {
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}
	sort.Strings(formats)
	return formats
}

func (r *Registry) find(format string) driven.Normaliser {
	format = NormaliseFormat(format)
	if format == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		for _, f := range n.SupportedFormats() {
			if f == format {
				return n
			}
		}
	}
	return nil
}

// NormaliseFormat lower-cases a format or extension and strips its dot.
func NormaliseFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}
