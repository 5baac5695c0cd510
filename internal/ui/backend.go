package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sorenkal/gridfeed/internal/api"
	"github.com/sorenkal/gridfeed/internal/fetch"
	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/thumbs"
	"github.com/sorenkal/gridfeed/internal/wire"
)

// waitForFetchEvent bridges the fetcher's event channel into the update
// loop; it reschedules itself after every message.
func waitForFetchEvent(f *fetch.Fetcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-f.Events()
		if !ok {
			return fetchDoneMsg{}
		}
		return fetchEventMsg{event: evt}
	}
}

// waitForTimer bridges the scheduling primitives (frame coalescer, resize
// and quality debouncers) into the update loop the same way.
func waitForTimer(timers <-chan timerMsg) tea.Cmd {
	return func() tea.Msg {
		return <-timers
	}
}

type fetchEventMsg struct {
	event fetch.Event
}

type fetchDoneMsg struct{}

type timerKind int

const (
	timerFrame timerKind = iota
	timerQuality
	timerResize
)

type timerMsg struct {
	kind timerKind
}

type loginResultMsg struct {
	key string
	err error
}

type sessionsMsg struct {
	prefixes []string
	err      error
}

type logoutMsg struct {
	err error
}

type albumsMsg struct {
	entries []wire.AlbumEntry
	err     error
}

type metadataMsg struct {
	id    string
	album wire.Album
	err   error
}

type thumbMsg struct {
	fileID string
	tier   gallery.Tier
	err    error
}

func loginCmd(client *api.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		key, err := client.Login(context.Background(), email, password)
		return loginResultMsg{key: key, err: err}
	}
}

func sessionsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		prefixes, err := client.Sessions(context.Background())
		return sessionsMsg{prefixes: prefixes, err: err}
	}
}

func logoutCmd(client *api.Client, keyPrefix string) tea.Cmd {
	return func() tea.Msg {
		return logoutMsg{err: client.Logout(context.Background(), keyPrefix)}
	}
}

func albumsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		entries, err := client.Albums(context.Background())
		return albumsMsg{entries: entries, err: err}
	}
}

func metadataCmd(client *api.Client, albumID string) tea.Cmd {
	return func() tea.Msg {
		album, err := client.AlbumMetadata(context.Background(), albumID)
		return metadataMsg{id: albumID, album: album, err: err}
	}
}

// thumbCmd fetches and decodes one thumbnail into the shared cache.
func thumbCmd(client *api.Client, cache *thumbs.Cache, fileID string, tier gallery.Tier, cols, rows int) tea.Cmd {
	return func() tea.Msg {
		data, err := client.FetchBytes(context.Background(), client.FileURL(fileID, tier))
		if err != nil {
			return thumbMsg{fileID: fileID, tier: tier, err: err}
		}
		mosaic, err := thumbs.Decode(data, cols, rows)
		if err != nil {
			return thumbMsg{fileID: fileID, tier: tier, err: err}
		}
		cache.Put(fileID, tier, mosaic)
		return thumbMsg{fileID: fileID, tier: tier}
	}
}
