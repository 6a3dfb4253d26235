package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/retouch"
)

// Recipe is a TOML edit recipe:
//
//	backend = "gpu"
//	workers = 4
//
//	[gpu]
//	backend = "vulkan"
//	adapter = ""
//	cpu_fallback = true
//
//	[filters]
//	exposition   = [0.5]
//	whitebalance = [6500, 0, 5200, 0]
//	gaussianblur = [1.5, 3]
type Recipe struct {
	Backend string               `toml:"backend"`
	Workers int                  `toml:"workers"`
	GPU     GPUConfig            `toml:"gpu"`
	Filters map[string][]float64 `toml:"filters"`
}

// GPUConfig selects the device used by the GPU backend.
type GPUConfig struct {
	Backend string `toml:"backend"`
	Adapter string `toml:"adapter"`

	// CPUFallback runs a filter on the CPU when the GPU rejects the image
	// format or size instead of failing the render.
	CPUFallback bool `toml:"cpu_fallback"`
}

// loadRecipe decodes a recipe file. Unknown keys are rejected so typos in
// filter tables do not pass silently.
func loadRecipe(path string) (*Recipe, error) {
	var r Recipe
	md, err := toml.DecodeFile(path, &r)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("recipe %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", path, err)
	}
	return &r, nil
}

func (r *Recipe) validate() error {
	if r.Backend != "" {
		if _, ok := retouch.ParseBackend(r.Backend); !ok {
			return fmt.Errorf("unknown backend %q", r.Backend)
		}
	}
	if r.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	for name := range r.Filters {
		if _, err := retouch.ParseFilterKind(name); err != nil {
			return err
		}
	}
	return nil
}

// apply sets every recipe filter on s.
func (r *Recipe) apply(s *retouch.Session) error {
	names := make([]string, 0, len(r.Filters))
	for name := range r.Filters {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		kind, err := retouch.ParseFilterKind(name)
		if err != nil {
			return err
		}
		if err := s.SetFilter(kind, r.Filters[name]...); err != nil {
			return fmt.Errorf("recipe filter %s: %w", name, err)
		}
	}
	return nil
}
