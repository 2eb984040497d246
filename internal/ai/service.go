package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/analysis"
)

const systemPrompt = `You are an air quality analyst for the Nairobi monitoring network.
Write a short plain-language briefing (3-5 sentences) for city officials based on
the structured findings you are given. Be concrete about zones and numbers, do
not invent data, and end with the single most important action.`

// Completer produces a completion from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Configured() bool
}

// ServiceConfig holds configuration for the narrative service.
type ServiceConfig struct {
	// Completer generates the narrative text.
	Completer Completer

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service renders analysis results into prompts and returns model-written
// narratives.
type Service struct {
	completer Completer
	logger    zerolog.Logger
}

// NewService creates a new narrative service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		completer: cfg.Completer,
		logger:    cfg.Logger,
	}
}

// Enabled reports whether narrative generation is available.
func (s *Service) Enabled() bool {
	return s.completer != nil && s.completer.Configured()
}

// Narrate generates a narrative for an analysis run.
func (s *Service) Narrate(ctx context.Context, a *analysis.Analysis) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}

	narrative, err := s.completer.Complete(ctx, systemPrompt, renderFindings(a))
	if err != nil {
		return "", fmt.Errorf("generate narrative: %w", err)
	}

	s.logger.Info().
		Str("analysis_id", a.ID).
		Int("length", len(narrative)).
		Msg("narrative generated")

	return narrative, nil
}

// renderFindings flattens an analysis into a compact text block for the
// user prompt.
func renderFindings(a *analysis.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generated at: %s\n", a.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "City mean PM2.5: %.1f µg/m³ across %d zones\n", a.CityMeanPM25, a.ZoneCount)

	if len(a.Hotspots) == 0 {
		b.WriteString("Hotspots: none detected\n")
	} else {
		b.WriteString("Hotspots:\n")
		for _, h := range a.Hotspots {
			fmt.Fprintf(&b, "- %s: %.1f µg/m³ (%.1fx city mean, %s)\n",
				h.ZoneName, h.PM25, h.Severity, h.Level)
		}
	}

	var attributed []analysis.SourceAttribution
	for _, attr := range a.Attributions {
		if attr.Source != analysis.SourceBackground {
			attributed = append(attributed, attr)
		}
	}
	if len(attributed) > 0 {
		b.WriteString("Likely sources:\n")
		for _, attr := range attributed {
			fmt.Fprintf(&b, "- %s: %s (confidence %.0f%%)\n",
				attr.ZoneID, attr.Source, attr.Confidence*100)
		}
	}

	if len(a.Recommendations) > 0 {
		b.WriteString("Recommended actions:\n")
		for _, rec := range a.Recommendations {
			fmt.Fprintf(&b, "- [%s] %s\n", rec.Priority, rec.Title)
		}
	}

	return b.String()
}
