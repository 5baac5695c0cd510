package ui

import (
	"reflect"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sorenkal/gridfeed/internal/api"
	"github.com/sorenkal/gridfeed/internal/fetch"
	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/logging/events"
	"github.com/sorenkal/gridfeed/internal/state"
	"github.com/sorenkal/gridfeed/internal/theme"
	"github.com/sorenkal/gridfeed/internal/thumbs"
)

type Mode int

const (
	ModeLogin Mode = iota
	ModePicker
	ModeFeed
	ModeFullscreen
)

func (m Mode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModePicker:
		return "picker"
	case ModeFeed:
		return "feed"
	case ModeFullscreen:
		return "fullscreen"
	default:
		return "unknown"
	}
}

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options carries everything the model needs at construction time.
type Options struct {
	Client     *api.Client
	AlbumID    string
	Width      int
	Height     int
	CellWidth  int
	CellHeight int
	ShowFooter bool
	Verbose    bool
	Tuning     gallery.Tuning
}

// Model implements the Bubble Tea model for the gallery client.
type Model struct {
	client  *api.Client
	albums  state.AlbumStore
	session state.SessionStore

	mode        Mode
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	cellWidth   int
	cellHeight  int
	showFooter  bool
	verbose     bool
	tuning      gallery.Tuning

	login      *loginForm
	picker     *picker
	feed       *feed
	startAlbum string

	cache          *thumbs.Cache
	thumbsInflight map[thumbKey]bool

	errMsg     string
	infoMsg    string
	infoExpire time.Time

	// timers carries callbacks from the scheduling primitives into the
	// update loop.
	timers chan timerMsg

	// fullscreen drag-gesture tracking, in cell coordinates
	dragStartX int
	dragging   bool

	handlers map[reflect.Type]msgHandler
	quitting bool
}

type thumbKey struct {
	fileID string
	tier   gallery.Tier
}

// NewModel initialises the UI with the login form or, when a key is
// already installed, the album picker.
func NewModel(opts Options) *Model {
	m := &Model{
		client:         opts.Client,
		albums:         state.NewAlbumStore(),
		session:        state.NewSessionStore(),
		cellWidth:      opts.CellWidth,
		cellHeight:     opts.CellHeight,
		showFooter:     opts.ShowFooter,
		verbose:        opts.Verbose,
		tuning:         opts.Tuning,
		startAlbum:     opts.AlbumID,
		cache:          thumbs.NewCache(0),
		thumbsInflight: make(map[thumbKey]bool),
		timers:         make(chan timerMsg, 16),
		mode:           ModeLogin,
		login:          newLoginForm(),
		picker:         newPicker(),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	if opts.Client.Key() != "" {
		m.session.SetKey(opts.Client.Key())
		m.mode = ModePicker
	}
	events.UI.Mode(m.mode.String())
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForTimer(m.timers)}
	switch m.mode {
	case ModeLogin:
		if cmd := m.login.Focus(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case ModePicker:
		cmds = append(cmds, albumsCmd(m.client), sessionsCmd(m.client))
		if cmd := m.picker.Focus(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	switch m.mode {
	case ModeLogin:
		return m, m.login.Update(msg)
	case ModePicker:
		return m, m.picker.Update(msg)
	}
	return m, nil
}

// Teardown releases timers and in-flight fetches; safe to call twice.
func (m *Model) Teardown() {
	if m.feed != nil {
		m.feed.teardown()
	}
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(fetchEventMsg{}):     m.handleFetchEventMsg,
		reflect.TypeOf(fetchDoneMsg{}):      m.handleFetchDoneMsg,
		reflect.TypeOf(timerMsg{}):          m.handleTimerMsg,
		reflect.TypeOf(loginResultMsg{}):    m.handleLoginResultMsg,
		reflect.TypeOf(sessionsMsg{}):       m.handleSessionsMsg,
		reflect.TypeOf(logoutMsg{}):         m.handleLogoutMsg,
		reflect.TypeOf(albumsMsg{}):         m.handleAlbumsMsg,
		reflect.TypeOf(metadataMsg{}):       m.handleMetadataMsg,
		reflect.TypeOf(thumbMsg{}):          m.handleThumbMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) setMode(mode Mode) {
	if m.mode == mode {
		return
	}
	m.mode = mode
	events.UI.Mode(mode.String())
}

func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	events.UI.Error(err)
	m.errMsg = err.Error()
}

func (m *Model) setInfo(info string) {
	m.infoMsg = info
	m.infoExpire = time.Now().Add(3 * time.Second)
}

func (m *Model) info() string {
	if m.infoMsg == "" || time.Now().After(m.infoExpire) {
		return ""
	}
	return m.infoMsg
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = size.Width
	}
	if !m.fixedHeight {
		m.height = size.Height
	}
	if m.feed != nil {
		m.feed.pendingVP = m.viewportFor(m.width, m.height)
		m.feed.resize.Reset()
	}
	return nil
}

// viewportFor maps terminal cells to the layout pixel space.
func (m *Model) viewportFor(widthCells, heightCells int) gallery.Viewport {
	return gallery.Viewport{
		Width:  float64(widthCells * m.cellWidth),
		Height: float64(m.contentRows(heightCells) * m.cellHeight),
	}
}

// contentRows is the feed body height: total minus the header line and the
// optional footer.
func (m *Model) contentRows(heightCells int) int {
	rows := heightCells - 1
	if m.showFooter {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) handleTimerMsg(msg tea.Msg) tea.Cmd {
	timer, ok := msg.(timerMsg)
	if !ok {
		return nil
	}
	cmds := []tea.Cmd{waitForTimer(m.timers)}
	if m.feed == nil {
		return tea.Batch(cmds...)
	}
	switch timer.kind {
	case timerFrame:
		if m.feed.tick() {
			events.Feed.Drain(m.feed.vp.ScrollTop)
		}
		if cmd := m.requestThumbs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case timerQuality:
		m.feed.evaluateQuality()
		if cmd := m.requestThumbs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case timerResize:
		m.feed.applyResize()
		if cmd := m.requestThumbs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleFetchEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(fetchEventMsg)
	if !ok || m.feed == nil {
		return nil
	}
	evt := eventMsg.event
	switch evt.Kind {
	case fetch.KindListing:
		if evt.Err != nil {
			// The engine stays uninitialised; nothing partial renders.
			m.setError(evt.Err)
			events.Fetch.Error(-1, evt.Err)
		} else {
			events.Fetch.Listing(m.feed.albumID, len(evt.Listing))
			m.feed.install(evt.Listing)
		}
	case fetch.KindFragment:
		m.feed.enqueue(evt)
	}
	return waitForFetchEvent(m.feed.fetcher)
}

func (m *Model) handleFetchDoneMsg(tea.Msg) tea.Cmd {
	return nil
}

func (m *Model) handleLoginResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(loginResultMsg)
	if !ok {
		return nil
	}
	if result.err != nil {
		m.setError(result.err)
		m.login.SetSubmitting(false)
		return nil
	}
	m.errMsg = ""
	m.session.SetKey(result.key)
	m.session.SetEmail(m.login.Email())
	m.setMode(ModePicker)
	return tea.Batch(albumsCmd(m.client), sessionsCmd(m.client), m.picker.Focus())
}

func (m *Model) handleSessionsMsg(msg tea.Msg) tea.Cmd {
	sessions, ok := msg.(sessionsMsg)
	if !ok {
		return nil
	}
	// Session listing is informational; failures don't block the picker.
	if sessions.err == nil {
		m.session.SetKeyPrefixes(sessions.prefixes)
	}
	return nil
}

func (m *Model) handleLogoutMsg(msg tea.Msg) tea.Cmd {
	logout, ok := msg.(logoutMsg)
	if !ok {
		return nil
	}
	if logout.err != nil {
		m.setError(logout.err)
		return nil
	}
	m.client.SetKey("")
	m.session.SetKey("")
	m.session.SetEmail("")
	m.session.SetKeyPrefixes(nil)
	m.setInfo("signed out")
	m.setMode(ModeLogin)
	return m.login.Focus()
}

// logoutPrefix picks the key prefix identifying this session: the listed
// prefix our key starts with, or the full key when the listing never
// arrived.
func (m *Model) logoutPrefix() string {
	key := m.client.Key()
	for _, prefix := range m.session.KeyPrefixes() {
		if strings.HasPrefix(key, prefix) {
			return prefix
		}
	}
	return key
}

func (m *Model) handleAlbumsMsg(msg tea.Msg) tea.Cmd {
	albums, ok := msg.(albumsMsg)
	if !ok {
		return nil
	}
	if albums.err != nil {
		m.setError(albums.err)
		return nil
	}
	m.errMsg = ""
	m.albums.SetEntries(albums.entries)
	m.picker.SetEntries(albums.entries)
	if m.startAlbum != "" {
		id := m.startAlbum
		m.startAlbum = ""
		return m.openAlbum(id)
	}
	return nil
}

func (m *Model) openAlbum(id string) tea.Cmd {
	return metadataCmd(m.client, id)
}

func (m *Model) handleMetadataMsg(msg tea.Msg) tea.Cmd {
	meta, ok := msg.(metadataMsg)
	if !ok {
		return nil
	}
	if meta.err != nil {
		m.setError(meta.err)
		return nil
	}
	m.errMsg = ""
	m.albums.SetCurrent(meta.id)
	m.albums.SetMetadata(meta.album)
	events.UI.AlbumOpen(meta.id, meta.album.Description.Name)

	if m.feed != nil {
		m.feed.teardown()
	}
	fetcher := fetch.New(m.client, meta.id)
	emit := func(t timerMsg) {
		select {
		case m.timers <- t:
		default:
		}
	}
	m.feed = newFeed(meta.id, meta.album, fetcher, m.tuning, m.viewportFor(m.width, m.height), emit)
	m.setMode(ModeFeed)
	return waitForFetchEvent(fetcher)
}

func (m *Model) handleThumbMsg(msg tea.Msg) tea.Cmd {
	thumb, ok := msg.(thumbMsg)
	if !ok {
		return nil
	}
	delete(m.thumbsInflight, thumbKey{thumb.fileID, thumb.tier})
	// Decode failures are not retried eagerly; the placeholder stays.
	return nil
}

// closeFeed returns to the picker, releasing the feed's resources.
func (m *Model) closeFeed() {
	if m.feed != nil {
		m.feed.teardown()
		m.feed = nil
	}
	m.thumbsInflight = make(map[thumbKey]bool)
	m.setMode(ModePicker)
}
