package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// captionFormat is the only subtitle format the transcript parser reads.
const captionFormat = "vtt"

var videoIDPattern = regexp.MustCompile(
	`(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?|shorts|live)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`,
)

// ExtractVideoID returns the 11-character video id embedded in a watch,
// short-link, embed or shorts URL.
func ExtractVideoID(url string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SelectTrack picks the caption track to transcribe. Manual tracks are
// preferred over automatic ones; within a tier the primary language wins,
// then the secondary language, then any track. Languages match by prefix,
// so "zh" selects "zh-Hant" and "zh-TW".
func SelectTrack(tracks []domain.CaptionTrack, primary, secondary string) (domain.CaptionTrack, bool) {
	for _, kind := range []domain.CaptionKind{domain.CaptionManual, domain.CaptionAuto} {
		var tier []domain.CaptionTrack
		for _, t := range tracks {
			if t.Kind == kind && strings.EqualFold(t.Format, captionFormat) && t.URL != "" {
				tier = append(tier, t)
			}
		}
		if len(tier) == 0 {
			continue
		}

		for _, lang := range []string{primary, secondary} {
			if t, ok := firstWithLanguage(tier, lang); ok {
				return t, true
			}
		}
		return tier[0], true
	}
	return domain.CaptionTrack{}, false
}

func firstWithLanguage(tracks []domain.CaptionTrack, prefix string) (domain.CaptionTrack, bool) {
	if prefix == "" {
		return domain.CaptionTrack{}, false
	}
	prefix = strings.ToLower(prefix)
	for _, t := range tracks {
		lang := strings.ToLower(t.Language)
		if lang == prefix || strings.HasPrefix(lang, prefix+"-") || strings.HasPrefix(lang, prefix+"_") {
			return t, true
		}
	}
	return domain.CaptionTrack{}, false
}
