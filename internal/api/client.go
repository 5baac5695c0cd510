// Package api is the HTTP client for the photo server. It covers the
// endpoints the gallery consumes: key auth, album listing and metadata,
// the head-listing fragment, section fragments, and the pure file URL
// resolver used for quality-tier loading.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sorenkal/gridfeed/internal/gallery"
	"github.com/sorenkal/gridfeed/internal/wire"
)

// Client talks to one photo server with an optional session key.
type Client struct {
	base *url.URL
	http *http.Client
	key  string
}

// New builds a client for the given base URL.
func New(baseURL string) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("server URL must be http or https, got %q", trimmed)
	}
	return &Client{
		base: parsed,
		http: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SetKey installs the session key appended to authenticated requests.
func (c *Client) SetKey(key string) { c.key = strings.TrimSpace(key) }

// Key returns the current session key, empty when logged out.
func (c *Client) Key() string { return c.key }

func (c *Client) endpoint(path string, authed bool) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if authed && c.key != "" {
		q := u.Query()
		q.Set("key", c.key)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do runs the request and fails on any non-2xx status, echoing the body.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		text := strings.TrimSpace(string(body))
		if text == "" {
			text = resp.Status
		}
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, text)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, true), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, authed bool, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, authed), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Login exchanges credentials for a session key and installs it.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var key wire.Key
	err := c.sendJSON(ctx, http.MethodPost, "/user/login", false, wire.UserDetails{Email: email, Password: password}, &key)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	c.key = key.Key
	return key.Key, nil
}

// Logout invalidates the session matching the given key prefix.
func (c *Client) Logout(ctx context.Context, keyPrefix string) error {
	if err := c.sendJSON(ctx, http.MethodDelete, "/user/logout", true, wire.Key{Key: keyPrefix}, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Sessions lists active session key prefixes for the account.
func (c *Client) Sessions(ctx context.Context) ([]string, error) {
	var list wire.SessionList
	if err := c.getJSON(ctx, "/user/sessions", &list); err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	return list.KeyPrefixes, nil
}

// Albums fetches the account's albums, sorted by name then id for a
// stable picker order. The server returns a map keyed by album id.
func (c *Client) Albums(ctx context.Context) ([]wire.AlbumEntry, error) {
	byID := map[string]wire.Album{}
	if err := c.getJSON(ctx, "/album/", &byID); err != nil {
		return nil, fmt.Errorf("albums: %w", err)
	}
	entries := make([]wire.AlbumEntry, 0, len(byID))
	for id, album := range byID {
		entries = append(entries, wire.AlbumEntry{ID: id, Album: album})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Album.Description.Name != entries[j].Album.Description.Name {
			return entries[i].Album.Description.Name < entries[j].Album.Description.Name
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// AlbumMetadata fetches the album object, including its fragment head.
func (c *Client) AlbumMetadata(ctx context.Context, albumID string) (wire.Album, error) {
	var album wire.Album
	if err := c.getJSON(ctx, "/album/"+url.PathEscape(albumID)+"/serve/metadata", &album); err != nil {
		return wire.Album{}, fmt.Errorf("album metadata: %w", err)
	}
	return album, nil
}

// Listing fetches the head listing (the Top fragment) of an album.
func (c *Client) Listing(ctx context.Context, albumID string, fragmentHead uint64) (wire.Listing, error) {
	var listing wire.Listing
	if err := c.getJSON(ctx, fragmentPath(albumID, fragmentHead), &listing); err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}
	return listing, nil
}

// Fragment fetches one section's item payload.
func (c *Client) Fragment(ctx context.Context, albumID string, fragmentID uint64) (wire.Fragment, error) {
	var fragment wire.Fragment
	if err := c.getJSON(ctx, fragmentPath(albumID, fragmentID), &fragment); err != nil {
		return nil, fmt.Errorf("fragment %d: %w", fragmentID, err)
	}
	return fragment, nil
}

// FetchBytes downloads an already-resolved locator, used for thumbnails.
func (c *Client) FetchBytes(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %s", req.URL.Path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// FileURL resolves the locator of a file at a quality tier. Pure; it never
// performs I/O and does no caching.
func (c *Client) FileURL(fileID string, tier gallery.Tier) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/file/serve/" + tier.String() + "/" + url.PathEscape(fileID)
	if c.key != "" {
		u.RawQuery = "key=" + url.QueryEscape(c.key)
	}
	return u.String()
}

func fragmentPath(albumID string, fragmentID uint64) string {
	return "/album/" + url.PathEscape(albumID) + "/serve/" + strconv.FormatUint(fragmentID, 10)
}
