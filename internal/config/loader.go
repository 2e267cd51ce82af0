package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional YAML file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SHOTSCOPE_CONFIG is set
//  3. env (prefix SHOTSCOPE_)
//
// The result is validated before being returned; a weight-table failure is
// fatal.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SHOTSCOPE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// SHOTSCOPE_FRAME_BUDGET -> frame_budget, SHOTSCOPE_POSE__SERVICE_URL ->
	// pose.service_url. Double underscore separates nesting levels so that
	// single underscores inside key names survive.
	envProvider := env.Provider("SHOTSCOPE_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "SHOTSCOPE_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural integrity. Checklist weights must be
// non-negative, item IDs unique across categories, and the total must sum to
// exactly 100 (within float tolerance).
func (c *Config) Validate() error {
	if c.FrameBudget <= 0 {
		return fmt.Errorf("frame_budget must be > 0, got %d", c.FrameBudget)
	}
	if c.CandidatePool < c.FrameBudget {
		return fmt.Errorf("candidate_pool (%d) must be >= frame_budget (%d)", c.CandidatePool, c.FrameBudget)
	}
	if c.Importance.Cutoff < 0 || c.Importance.Cutoff >= 1 {
		return fmt.Errorf("importance.cutoff must be in [0,1), got %g", c.Importance.Cutoff)
	}
	if c.Release.RefractoryMs <= 0 {
		return fmt.Errorf("release.refractory_ms must be > 0, got %d", c.Release.RefractoryMs)
	}

	seen := make(map[string]struct{})
	var total float64
	for _, cat := range c.Checklist.Categories {
		if cat.Name == "" {
			return fmt.Errorf("%w: unnamed category", ErrInvalidWeights)
		}
		for _, it := range cat.Items {
			if it.ID == "" {
				return fmt.Errorf("%w: empty item id in category %q", ErrInvalidWeights, cat.Name)
			}
			if it.Weight < 0 {
				return fmt.Errorf("%w: item %q has negative weight %g", ErrInvalidWeights, it.ID, it.Weight)
			}
			if _, dup := seen[it.ID]; dup {
				return fmt.Errorf("%w: item %q appears in more than one category", ErrInvalidWeights, it.ID)
			}
			seen[it.ID] = struct{}{}
			total += it.Weight
		}
	}
	if math.Abs(total-100) > 1e-6 {
		return fmt.Errorf("%w: weights sum to %g, want 100", ErrInvalidWeights, total)
	}
	return nil
}
