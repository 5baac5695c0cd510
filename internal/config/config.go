package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sorenkal/gridfeed/internal/app"
	"github.com/sorenkal/gridfeed/internal/gallery"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const (
	envServerURL      = "GRIDFEED_URL"
	envAlbum          = "GRIDFEED_ALBUM"
	envKeyFile        = "GRIDFEED_KEY_FILE"
	envWidth          = "GRIDFEED_WIDTH"
	envHeight         = "GRIDFEED_HEIGHT"
	envCellWidth      = "GRIDFEED_CELL_WIDTH"
	envCellHeight     = "GRIDFEED_CELL_HEIGHT"
	envIdealRowHeight = "GRIDFEED_IDEAL_ROW_HEIGHT"
	envInnerBand      = "GRIDFEED_INNER_BAND"
	envOuterBand      = "GRIDFEED_OUTER_BAND"
	envSpeedThreshold = "GRIDFEED_SPEED_THRESHOLD"
	envNoAnchor       = "GRIDFEED_NO_ANCHOR"
	envShowFooter     = "GRIDFEED_FOOTER"
	envVerbose        = "GRIDFEED_VERBOSE"
	envTrace          = "GRIDFEED_TRACE"
	envLogFile        = "GRIDFEED_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	defaults := gallery.DefaultTuning()

	fs := flag.NewFlagSet("gridfeed", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	serverURL := fs.String("url", envOrDefault(env, envServerURL, ""), "base URL of the photo server (required)")
	album := fs.String("album", envOrDefault(env, envAlbum, ""), "album id to open at startup (skips the picker)")
	keyFile := fs.String("key-file", envOrDefault(env, envKeyFile, ""), "path to a file holding a session key (skips the login form)")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	cellWidth := fs.Int("cell-width", envOrInt(env, envCellWidth, 8), "layout pixels per terminal cell column")
	cellHeight := fs.Int("cell-height", envOrInt(env, envCellHeight, 16), "layout pixels per terminal cell row")
	idealRow := fs.Float64("ideal-row-height", envOrFloat(env, envIdealRowHeight, defaults.IdealRowHeight), "target row height in layout pixels")
	innerBand := fs.Float64("inner-band", envOrFloat(env, envInnerBand, defaults.InnerRadius), "section creation radius in viewport heights")
	outerBand := fs.Float64("outer-band", envOrFloat(env, envOuterBand, defaults.OuterRadius), "section destruction radius in viewport heights")
	speed := fs.Float64("speed-threshold", envOrFloat(env, envSpeedThreshold, defaults.SpeedThreshold), "scroll speed fraction above which quality evaluation is deferred")
	noAnchor := fs.Bool("no-anchor", envOrBool(env, envNoAnchor, false), "disable scroll compensation when off-screen sections change height")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "log per-fragment fetch results")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}
	if *cellWidth <= 0 || *cellHeight <= 0 {
		return Config{}, fmt.Errorf("cell geometry must be positive (got %dx%d)", *cellWidth, *cellHeight)
	}
	if *idealRow <= 0 {
		return Config{}, fmt.Errorf("ideal-row-height must be positive (got %v)", *idealRow)
	}
	if *outerBand < *innerBand {
		return Config{}, fmt.Errorf("outer-band (%v) must contain inner-band (%v)", *outerBand, *innerBand)
	}

	tuning := defaults
	tuning.IdealRowHeight = *idealRow
	tuning.InnerRadius = *innerBand
	tuning.OuterRadius = *outerBand
	tuning.SpeedThreshold = *speed
	tuning.AnchorScroll = !*noAnchor

	cfg := Config{
		App: app.Config{
			ServerURL:  *serverURL,
			AlbumID:    *album,
			KeyFile:    *keyFile,
			Width:      *width,
			Height:     *height,
			CellWidth:  *cellWidth,
			CellHeight: *cellHeight,
			ShowFooter: *footer,
			Verbose:    *verbose,
			Tuning:     tuning,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
		},
		Flags: map[string]string{
			"url":            *serverURL,
			"album":          *album,
			"keyFile":        *keyFile,
			"width":          strconv.Itoa(*width),
			"height":         strconv.Itoa(*height),
			"cellWidth":      strconv.Itoa(*cellWidth),
			"cellHeight":     strconv.Itoa(*cellHeight),
			"idealRowHeight": strconv.FormatFloat(*idealRow, 'f', -1, 64),
			"innerBand":      strconv.FormatFloat(*innerBand, 'f', -1, 64),
			"outerBand":      strconv.FormatFloat(*outerBand, 'f', -1, 64),
			"speedThreshold": strconv.FormatFloat(*speed, 'f', -1, 64),
			"noAnchor":       strconv.FormatBool(*noAnchor),
			"footer":         strconv.FormatBool(*footer),
			"trace":          strconv.FormatBool(*trace),
			"verbose":        strconv.FormatBool(*verbose),
			"logFile":        *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrFloat(env map[string]string, key string, fallback float64) float64 {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.App.ServerURL) == "" {
		return fmt.Errorf("a server URL is required (-url or %s)", envServerURL)
	}
	return nil
}
