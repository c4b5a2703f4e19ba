// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config holds the tunables of the frame engine and reads them
// from TOML or YAML files.
//
// A config file only needs the keys it changes; everything else keeps its
// default:
//
//	[dirty]
//	max_regions = 32
//
//	[cache]
//	max_bytes = 134217728
//
//	[scheduler]
//	background = "#202020"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/uiframe/dirty"
	"github.com/gogpu/uiframe/geom"
	"github.com/gogpu/uiframe/hittest"
	"github.com/gogpu/uiframe/render"
	"github.com/gogpu/uiframe/rendercache"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// DefaultDeferredDrainLimit is the default number of deferred operations
// run per frame.
const DefaultDeferredDrainLimit = 64

// Config is the complete engine configuration.
type Config struct {
	Dirty     Dirty     `toml:"dirty" yaml:"dirty"`
	Cache     Cache     `toml:"cache" yaml:"cache"`
	HitTest   HitTest   `toml:"hittest" yaml:"hittest"`
	Scheduler Scheduler `toml:"scheduler" yaml:"scheduler"`
}

// Dirty configures the dirty region tracker.
type Dirty struct {
	// MaxRegions is the region budget before a full-frame repaint.
	MaxRegions int `toml:"max_regions" yaml:"max_regions"`
}

// Cache configures the render cache store and policy.
type Cache struct {
	Enabled    bool  `toml:"enabled" yaml:"enabled"`
	MaxEntries int   `toml:"max_entries" yaml:"max_entries"`
	MaxBytes   int64 `toml:"max_bytes" yaml:"max_bytes"`

	MinTransformedSubtreeArea float64 `toml:"min_transformed_subtree_area" yaml:"min_transformed_subtree_area"`
	MinHighCostArea           float64 `toml:"min_high_cost_area" yaml:"min_high_cost_area"`
	MinStaticContainerArea    float64 `toml:"min_static_container_area" yaml:"min_static_container_area"`
	HighCostVisualCount       int     `toml:"high_cost_visual_count" yaml:"high_cost_visual_count"`

	// Epsilon is the bounds comparison tolerance in pixels.
	Epsilon float64 `toml:"epsilon" yaml:"epsilon"`

	// PoolPerSize is the number of idle bitmaps kept per size.
	PoolPerSize int `toml:"pool_per_size" yaml:"pool_per_size"`
}

// HitTest configures the hit tester.
type HitTest struct {
	FastPathMinChildren int  `toml:"fast_path_min_children" yaml:"fast_path_min_children"`
	Timing              bool `toml:"timing" yaml:"timing"`
}

// Scheduler configures the frame scheduler.
type Scheduler struct {
	// DeferredDrainLimit caps deferred operations run per Update.
	DeferredDrainLimit int `toml:"deferred_drain_limit" yaml:"deferred_drain_limit"`
	// Background is the hex color dirty areas are cleared to.
	Background string `toml:"background" yaml:"background"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dirty: Dirty{MaxRegions: dirty.DefaultMaxRegions},
		Cache: Cache{
			Enabled:                   true,
			MaxEntries:                rendercache.DefaultMaxEntries,
			MaxBytes:                  rendercache.DefaultMaxBytes,
			MinTransformedSubtreeArea: rendercache.DefaultMinTransformedSubtreeArea,
			MinHighCostArea:           rendercache.DefaultMinHighCostArea,
			MinStaticContainerArea:    rendercache.DefaultMinStaticContainerArea,
			HighCostVisualCount:       rendercache.DefaultHighCostVisualCount,
			Epsilon:                   geom.DefaultEpsilon,
			PoolPerSize:               render.DefaultPoolPerSize,
		},
		HitTest: HitTest{FastPathMinChildren: hittest.DefaultFastPathMinChildren},
		Scheduler: Scheduler{
			DeferredDrainLimit: DefaultDeferredDrainLimit,
			Background:         "#ffffff",
		},
	}
}

// Parse reads a TOML document over the defaults and validates the result.
// Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	return decode(bytes.NewReader(data))
}

// ParseYAML is Parse for YAML documents.
func ParseYAML(data []byte) (Config, error) {
	return decodeYAML(bytes.NewReader(data))
}

// Load reads and parses the file at path. Files ending in .yaml or .yml
// are read as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c, err = decodeYAML(f)
	default:
		c, err = decode(f)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func decode(r io.Reader) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func decodeYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

// Validate reports every out-of-range value. The returned error wraps
// ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Dirty.MaxRegions > 0, "dirty.max_regions must be positive, got %d", c.Dirty.MaxRegions)
	check(c.Cache.MaxEntries > 0, "cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	check(c.Cache.MaxBytes > 0, "cache.max_bytes must be positive, got %d", c.Cache.MaxBytes)
	check(c.Cache.MinTransformedSubtreeArea >= 0, "cache.min_transformed_subtree_area must not be negative")
	check(c.Cache.MinHighCostArea >= 0, "cache.min_high_cost_area must not be negative")
	check(c.Cache.MinStaticContainerArea >= 0, "cache.min_static_container_area must not be negative")
	check(c.Cache.HighCostVisualCount >= 0, "cache.high_cost_visual_count must not be negative")
	check(c.Cache.Epsilon >= 0, "cache.epsilon must not be negative, got %g", c.Cache.Epsilon)
	check(c.Cache.PoolPerSize >= 0, "cache.pool_per_size must not be negative")
	check(c.HitTest.FastPathMinChildren >= 0, "hittest.fast_path_min_children must not be negative")
	check(c.Scheduler.DeferredDrainLimit > 0, "scheduler.deferred_drain_limit must be positive, got %d", c.Scheduler.DeferredDrainLimit)
	check(validHex(c.Scheduler.Background), "scheduler.background %q is not a hex color", c.Scheduler.Background)

	return errors.Join(errs...)
}

// Thresholds returns the cache policy thresholds.
func (c Config) Thresholds() rendercache.Thresholds {
	return rendercache.Thresholds{
		MinTransformedSubtreeArea: c.Cache.MinTransformedSubtreeArea,
		MinHighCostArea:           c.Cache.MinHighCostArea,
		MinStaticContainerArea:    c.Cache.MinStaticContainerArea,
		HighCostVisualCount:       c.Cache.HighCostVisualCount,
	}
}

// Policy returns the cache policy described by c.
func (c Config) Policy() rendercache.Policy {
	return rendercache.NewPolicy(c.Thresholds(), c.Cache.Epsilon)
}

// BackgroundColor returns the parsed background color.
func (c Config) BackgroundColor() gg.RGBA {
	return gg.Hex(c.Scheduler.Background)
}

// validHex accepts #rgb, #rgba, #rrggbb and #rrggbbaa, with or without '#'.
func validHex(s string) bool {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
