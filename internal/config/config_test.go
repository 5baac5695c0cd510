package config

import (
	"strings"
	"testing"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{"-url", "https://photos.example"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.ServerURL != "https://photos.example" {
		t.Fatalf("server url = %q", cfg.App.ServerURL)
	}
	if cfg.App.CellWidth != 8 || cfg.App.CellHeight != 16 {
		t.Fatalf("cell geometry = %dx%d, want 8x16", cfg.App.CellWidth, cfg.App.CellHeight)
	}
	if cfg.App.Tuning.IdealRowHeight != 300 {
		t.Fatalf("ideal row height = %v", cfg.App.Tuning.IdealRowHeight)
	}
	if !cfg.App.Tuning.AnchorScroll {
		t.Fatalf("anchoring disabled by default")
	}
}

func TestLoadArgsEnvironmentFallback(t *testing.T) {
	env := []string{
		"GRIDFEED_URL=https://env.example",
		"GRIDFEED_ALBUM=alb42",
		"GRIDFEED_INNER_BAND=3",
		"GRIDFEED_OUTER_BAND=4",
		"GRIDFEED_TRACE=1",
	}
	cfg, err := LoadArgs(nil, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.ServerURL != "https://env.example" || cfg.App.AlbumID != "alb42" {
		t.Fatalf("env values not applied: %+v", cfg.App)
	}
	if cfg.App.Tuning.InnerRadius != 3 || cfg.App.Tuning.OuterRadius != 4 {
		t.Fatalf("band radii = %v/%v", cfg.App.Tuning.InnerRadius, cfg.App.Tuning.OuterRadius)
	}
	if !cfg.Logging.Trace {
		t.Fatalf("trace env not applied")
	}
}

func TestLoadArgsFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := LoadArgs([]string{"-album", "flagged"}, []string{"GRIDFEED_ALBUM=from-env"})
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.AlbumID != "flagged" {
		t.Fatalf("album = %q, want flag value", cfg.App.AlbumID)
	}
}

func TestLoadArgsRejectsInvertedBands(t *testing.T) {
	_, err := LoadArgs([]string{"-inner-band", "6", "-outer-band", "5"}, nil)
	if err == nil || !strings.Contains(err.Error(), "outer-band") {
		t.Fatalf("expected band validation error, got %v", err)
	}
}

func TestLoadArgsRejectsBadGeometry(t *testing.T) {
	if _, err := LoadArgs([]string{"-cell-width", "0"}, nil); err == nil {
		t.Fatalf("expected cell geometry error")
	}
	if _, err := LoadArgs([]string{"-width", "-1"}, nil); err == nil {
		t.Fatalf("expected width error")
	}
	if _, err := LoadArgs([]string{"-ideal-row-height", "0"}, nil); err == nil {
		t.Fatalf("expected row height error")
	}
}

func TestValidateRequiresServerURL(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected validation error without a server URL")
	}
}
