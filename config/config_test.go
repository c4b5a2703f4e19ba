// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/uiframe/rendercache"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c.Thresholds() != rendercache.DefaultThresholds() {
		t.Errorf("Thresholds() = %+v, want defaults", c.Thresholds())
	}
	if c.BackgroundColor().A != 1 {
		t.Errorf("BackgroundColor().A = %v, want 1", c.BackgroundColor().A)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := []byte(`
[dirty]
max_regions = 32

[cache]
max_bytes = 1048576
min_high_cost_area = 512.5

[scheduler]
background = "#202020"
`)
	c, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Dirty.MaxRegions != 32 {
		t.Errorf("Dirty.MaxRegions = %d, want 32", c.Dirty.MaxRegions)
	}
	if c.Cache.MaxBytes != 1<<20 {
		t.Errorf("Cache.MaxBytes = %d, want %d", c.Cache.MaxBytes, 1<<20)
	}
	if c.Cache.MinHighCostArea != 512.5 {
		t.Errorf("Cache.MinHighCostArea = %v, want 512.5", c.Cache.MinHighCostArea)
	}
	// Untouched keys keep their defaults.
	if want := Default().Cache.MaxEntries; c.Cache.MaxEntries != want {
		t.Errorf("Cache.MaxEntries = %d, want default %d", c.Cache.MaxEntries, want)
	}
	if !c.Cache.Enabled {
		t.Error("Cache.Enabled = false, want default true")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		invalid bool
	}{
		{"negative regions", "[dirty]\nmax_regions = -1\n", true},
		{"zero drain limit", "[scheduler]\ndeferred_drain_limit = 0\n", true},
		{"bad color", "[scheduler]\nbackground = \"blue\"\n", true},
		{"negative epsilon", "[cache]\nepsilon = -0.5\n", true},
		{"unknown key", "[cache]\nmax_entriez = 4\n", true},
		{"syntax", "[dirty\n", false},
		{"wrong type", "[dirty]\nmax_regions = \"many\"\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (err = %v)", got, tt.invalid, err)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := Default()
	c.Dirty.MaxRegions = 0
	c.Cache.MaxEntries = 0
	err := c.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("Validate() error %T does not join errors", err)
	}
	if got := len(joined.Unwrap()); got != 2 {
		t.Errorf("len(Unwrap()) = %d, want 2", got)
	}
}

func TestLoadAndEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.HitTest.FastPathMinChildren = 40
	want.Scheduler.Background = "#336699"

	var buf bytes.Buffer
	if err := want.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "uiframe.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadYAML(t *testing.T) {
	doc := []byte("cache:\n  enabled: false\n  max_entries: 12\nhittest:\n  timing: true\n")
	path := filepath.Join(t.TempDir(), "uiframe.yaml")
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Cache.Enabled || c.Cache.MaxEntries != 12 || !c.HitTest.Timing {
		t.Errorf("Load() = %+v, want caching off, 12 entries, timing on", c)
	}
	if want := Default().Dirty; c.Dirty != want {
		t.Errorf("Dirty = %+v, want default %+v", c.Dirty, want)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	if _, err := ParseYAML([]byte("cache:\n  bogus: 1\n")); err == nil {
		t.Error("unknown YAML key accepted")
	}
	if _, err := ParseYAML([]byte("dirty:\n  max_regions: 0\n")); !errors.Is(err, ErrInvalid) {
		t.Errorf("ParseYAML() error = %v, want ErrInvalid", err)
	}
	c, err := ParseYAML(nil)
	if err != nil || c != Default() {
		t.Errorf("ParseYAML(nil) = %+v, %v, want defaults", c, err)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uiframe.toml")
	if err := os.WriteFile(path, []byte("[dirty]\nmax_regions = 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := make(chan Config, 16)
	w, err := Watch(path, func(c Config, err error) {
		if err != nil {
			return
		}
		select {
		case got <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	if err := os.WriteFile(path, []byte("[dirty]\nmax_regions = 40\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// A save can arrive as several events; wait for the final contents.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.Dirty.MaxRegions == 40 {
				return
			}
		case <-timeout:
			t.Fatal("no reload observed")
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}
