package targets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/farcloser/primordium/fault"
	"golang.org/x/sync/singleflight"

	"github.com/farcloser/cambium/internal/keys"
	"github.com/farcloser/cambium/internal/types"
)

// Normalizer resolves genre names into validated, canonical target profiles.
type Normalizer struct {
	Source Source
	Cache  Cache
	Mode   Mode

	group singleflight.Group
}

// New returns a Normalizer reading from source with an in-memory cache.
func New(source Source, mode Mode) *Normalizer {
	return &Normalizer{
		Source: source,
		Cache:  NewMemoryCache(),
		Mode:   mode,
	}
}

// Profile returns the profile for genre in the normalizer's mode. Resolution fails closed: a document that
// is unreadable, malformed or inconsistent yields an error, never a partial profile.
// An empty genre resolves the default document.
func (n *Normalizer) Profile(ctx context.Context, genre string) (*types.TargetProfile, error) {
	name := NormalizeGenre(genre)
	if name == "" {
		name = DefaultGenre
	}

	mode := n.Mode
	if mode == "" {
		mode = ModeClub
	}

	key := cacheKey(name, mode)

	if n.Cache != nil {
		if profile, ok := n.Cache.Get(key); ok {
			return profile, nil
		}
	}

	value, err, _ := n.group.Do(key, func() (any, error) {
		slog.Debug("targets.Profile", "stage", "load", "genre", name, "mode", mode)

		data, err := n.Source.Document(ctx, name)
		if err != nil {
			return nil, err
		}

		profile, err := Parse(name, data, mode)
		if err != nil {
			return nil, err
		}

		if n.Cache != nil {
			profile = n.Cache.Put(key, profile)
		}

		return profile, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*types.TargetProfile), nil //nolint:forcetypeassert // the loader only returns profiles
}

// Parse turns a raw genre document into a profile for mode. It performs no I/O.
func Parse(genre string, data []byte, mode Mode) (*types.TargetProfile, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: genre %q: %w", fault.ErrInvalidJSON, genre, err)
	}

	root := block(doc)
	if nested, ok := root.child(genre); ok {
		root = nested
	}

	problems := []string{"no block declares both a loudness and a dynamic range target"}

	for _, s := range strategies {
		d, ok := s.extract(root)
		if !ok {
			if d != nil {
				problems = append(problems, d.problems...)
			}

			continue
		}

		d.validate()

		if len(d.problems) > 0 {
			return nil, &ValidationError{Genre: genre, Problems: d.problems}
		}

		for _, key := range keys.Metrics {
			if _, ok := d.metrics[key]; !ok {
				slog.Warn("targets: metric has no target, omitting", "genre", genre, "metric", key, "strategy", s.name)
			}
		}

		mode.apply(d.metrics)

		slog.Debug("targets.Parse", "stage", "done", "genre", genre, "strategy", s.name,
			"metrics", len(d.metrics), "bands", len(d.bands))

		return types.NewTargetProfile(genre, string(mode), s.name, d.metrics, d.bands), nil
	}

	return nil, &ValidationError{Genre: genre, Problems: slices.Compact(problems)}
}
