package state

type SessionStore interface {
	Key() string
	SetKey(string)
	KeyPrefixes() []string
	SetKeyPrefixes([]string)
	Email() string
	SetEmail(string)
}

type sessionStore struct {
	key         string
	keyPrefixes []string
	email       string
}

func NewSessionStore() SessionStore {
	return &sessionStore{}
}

func (s *sessionStore) Key() string {
	return s.key
}

func (s *sessionStore) SetKey(key string) {
	s.key = key
}

func (s *sessionStore) KeyPrefixes() []string {
	return cloneStrings(s.keyPrefixes)
}

func (s *sessionStore) SetKeyPrefixes(prefixes []string) {
	s.keyPrefixes = cloneStrings(prefixes)
}

func (s *sessionStore) Email() string {
	return s.email
}

func (s *sessionStore) SetEmail(email string) {
	s.email = email
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	dup := make([]string, len(values))
	copy(dup, values)
	return dup
}
