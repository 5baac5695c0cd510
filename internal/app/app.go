package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sorenkal/gridfeed/internal/api"
	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	ServerURL  string
	AlbumID    string
	KeyFile    string
	Width      int
	Height     int
	CellWidth  int
	CellHeight int
	ShowFooter bool
	Verbose    bool
	Tuning     gallery.Tuning
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	client, err := api.New(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if cfg.KeyFile != "" {
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return fmt.Errorf("read key file: %w", err)
		}
		client.SetKey(strings.TrimSpace(string(key)))
	}

	model := ui.NewModel(ui.Options{
		Client:     client,
		AlbumID:    cfg.AlbumID,
		Width:      cfg.Width,
		Height:     cfg.Height,
		CellWidth:  cfg.CellWidth,
		CellHeight: cfg.CellHeight,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
		Tuning:     cfg.Tuning,
	})
	defer model.Teardown()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
