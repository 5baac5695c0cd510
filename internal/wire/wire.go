// Package wire defines the JSON types exchanged with the photo server.
// Listing and fragment payloads use a compact tuple-array encoding
// ([[ts, fragmentId, length], ...] and [[ts, fileId, w, h], ...]) rather
// than objects, so they carry custom (un)marshalers.
package wire

import (
	"encoding/json"
	"fmt"
)

// ListingEntry is one row of the head listing: a section keyed by its
// day-truncated timestamp, with the fragment id holding its items and the
// number of items it contains.
type ListingEntry struct {
	Timestamp  int64
	FragmentID uint64
	Length     int
}

// Listing is the head fragment of an album, ascending by timestamp.
type Listing []ListingEntry

func (l Listing) MarshalJSON() ([]byte, error) {
	rows := make([][3]interface{}, len(l))
	for i, e := range l {
		rows[i] = [3]interface{}{e.Timestamp, e.FragmentID, e.Length}
	}
	return json.Marshal(rows)
}

func (l *Listing) UnmarshalJSON(data []byte) error {
	var rows [][]json.Number
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("listing: %w", err)
	}
	out := make(Listing, 0, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return fmt.Errorf("listing: entry %d has %d fields, want 3", i, len(row))
		}
		ts, err := row[0].Int64()
		if err != nil {
			return fmt.Errorf("listing: entry %d timestamp: %w", i, err)
		}
		frag, err := row[1].Int64()
		if err != nil || frag < 0 {
			return fmt.Errorf("listing: entry %d fragment id %q", i, row[1])
		}
		length, err := row[2].Int64()
		if err != nil || length < 0 {
			return fmt.Errorf("listing: entry %d length %q", i, row[2])
		}
		out = append(out, ListingEntry{Timestamp: ts, FragmentID: uint64(frag), Length: int(length)})
	}
	*l = out
	return nil
}

// FragmentItem is one row of a section fragment.
type FragmentItem struct {
	Timestamp int64
	FileID    string
	Width     int
	Height    int
}

// Fragment is the lazily fetched item payload of one section, ordered by
// (timestamp, fileId).
type Fragment []FragmentItem

func (f Fragment) MarshalJSON() ([]byte, error) {
	rows := make([][4]interface{}, len(f))
	for i, e := range f {
		rows[i] = [4]interface{}{e.Timestamp, e.FileID, e.Width, e.Height}
	}
	return json.Marshal(rows)
}

func (f *Fragment) UnmarshalJSON(data []byte) error {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("fragment: %w", err)
	}
	out := make(Fragment, 0, len(rows))
	for i, row := range rows {
		if len(row) != 4 {
			return fmt.Errorf("fragment: entry %d has %d fields, want 4", i, len(row))
		}
		var item FragmentItem
		if err := json.Unmarshal(row[0], &item.Timestamp); err != nil {
			return fmt.Errorf("fragment: entry %d timestamp: %w", i, err)
		}
		if err := json.Unmarshal(row[1], &item.FileID); err != nil {
			return fmt.Errorf("fragment: entry %d file id: %w", i, err)
		}
		if err := json.Unmarshal(row[2], &item.Width); err != nil {
			return fmt.Errorf("fragment: entry %d width: %w", i, err)
		}
		if err := json.Unmarshal(row[3], &item.Height); err != nil {
			return fmt.Errorf("fragment: entry %d height: %w", i, err)
		}
		out = append(out, item)
	}
	*f = out
	return nil
}

// UserDetails is the login/create request body.
type UserDetails struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Key is the session key issued by login and presented on every request.
type Key struct {
	Key string `json:"key"`
}

// SessionList enumerates active session key prefixes for the account.
type SessionList struct {
	KeyPrefixes []string `json:"key_prefixes"`
}

// AlbumSettings is the user-editable part of an album.
type AlbumSettings struct {
	Name     string `json:"name"`
	TimeZone string `json:"time_zone"`
}

// Album is the server's album object as served by the metadata endpoint.
// DateRange is [min, max] timestamps, or null while the album is empty.
type Album struct {
	Description  AlbumSettings `json:"description"`
	FragmentHead uint64        `json:"fragment_head"`
	Length       int           `json:"length"`
	LastUpdate   int64         `json:"last_update"`
	DateRange    *[2]int64     `json:"date_range"`
	Role         string        `json:"role,omitempty"`
}

// AlbumEntry pairs an album id with its metadata, for the album list.
type AlbumEntry struct {
	ID    string
	Album Album
}
