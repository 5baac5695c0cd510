package state

import "github.com/sorenkal/gridfeed/internal/wire"

type AlbumStore interface {
	Entries() []wire.AlbumEntry
	SetEntries([]wire.AlbumEntry)
	Current() string
	SetCurrent(string)
	Metadata() wire.Album
	SetMetadata(wire.Album)
}

type albumStore struct {
	entries  []wire.AlbumEntry
	current  string
	metadata wire.Album
}

func NewAlbumStore() AlbumStore {
	return &albumStore{}
}

func (s *albumStore) Entries() []wire.AlbumEntry {
	return cloneAlbumEntries(s.entries)
}

func (s *albumStore) SetEntries(entries []wire.AlbumEntry) {
	s.entries = cloneAlbumEntries(entries)
}

func (s *albumStore) Current() string {
	return s.current
}

func (s *albumStore) SetCurrent(id string) {
	s.current = id
}

func (s *albumStore) Metadata() wire.Album {
	return s.metadata
}

func (s *albumStore) SetMetadata(album wire.Album) {
	s.metadata = album
}

func cloneAlbumEntries(entries []wire.AlbumEntry) []wire.AlbumEntry {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]wire.AlbumEntry, len(entries))
	copy(dup, entries)
	return dup
}
