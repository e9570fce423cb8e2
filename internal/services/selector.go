package services

import (
	"context"
	"log/slog"

	"snakechat-backend/internal/gemini"
)

// DefaultModel is the distinguished fallback picked when none of the
// preferences is listed but it is.
const DefaultModel = "gemini-2.5-flash"

// PreferredModels is the built-in priority order, best first.
var PreferredModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
}

// Selection is the model choice made once at startup and handed to the chat
// service. It is read-only once the server starts.
type Selection struct {
	// Active is the model tried first for every request.
	Active string
	// Candidates is the ordered fallback list, starting with Active.
	Candidates []string
	// Probed is true when the selection came from the live model listing.
	Probed bool
}

type ModelSelector struct {
	client      gemini.Client
	preferences []string
	logger      *slog.Logger
}

// NewModelSelector builds the preference list with override, when set, ahead
// of the built-in models.
func NewModelSelector(client gemini.Client, override string, logger *slog.Logger) *ModelSelector {
	if logger == nil {
		logger = slog.Default()
	}
	prefs := make([]string, 0, len(PreferredModels)+1)
	if override != "" {
		prefs = append(prefs, override)
	}
	prefs = append(prefs, PreferredModels...)

	return &ModelSelector{
		client:      client,
		preferences: dedupeModels(prefs),
		logger:      logger,
	}
}

func (s *ModelSelector) Preferences() []string {
	out := make([]string, len(s.preferences))
	copy(out, s.preferences)
	return out
}

// Static returns the preference list as-is, without asking upstream.
func (s *ModelSelector) Static() Selection {
	return Selection{
		Active:     s.preferences[0],
		Candidates: s.Preferences(),
	}
}

// Probe lists the models the API key can use and selects from them. A failed
// or empty listing is logged and falls back to Static.
func (s *ModelSelector) Probe(ctx context.Context) Selection {
	raw, err := s.client.ListModels(ctx)
	if err != nil {
		s.logger.Warn("model probe failed, using static preferences", "error", err, "model", s.preferences[0])
		return s.Static()
	}

	list, err := gemini.ParseModelList(raw)
	if err != nil {
		s.logger.Warn("model probe returned an unreadable listing, using static preferences", "error", err)
		return s.Static()
	}

	var available []string
	for _, m := range list.Models {
		if gemini.SupportsGenerate(m) {
			available = append(available, gemini.ModelID(m.Name))
		}
	}
	if len(available) == 0 {
		s.logger.Warn("model probe found no generateContent models, using static preferences")
		return s.Static()
	}

	sel := Select(s.preferences, available)
	s.logger.Debug("model probe complete", "available", len(available), "candidates", sel.Candidates)
	return sel
}

// Select intersects preferences with available in priority order. With no
// match it picks DefaultModel when available, otherwise the first available
// model.
func Select(preferences, available []string) Selection {
	if len(available) == 0 {
		return Selection{Probed: true}
	}
	listed := make(map[string]struct{}, len(available))
	for _, m := range available {
		listed[m] = struct{}{}
	}

	var candidates []string
	for _, p := range dedupeModels(preferences) {
		if _, ok := listed[p]; ok {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) == 0 {
		if _, ok := listed[DefaultModel]; ok {
			candidates = []string{DefaultModel}
		} else {
			candidates = []string{available[0]}
		}
	}

	return Selection{
		Active:     candidates[0],
		Candidates: candidates,
		Probed:     true,
	}
}

func dedupeModels(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, m := range in {
		m = gemini.ModelID(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
