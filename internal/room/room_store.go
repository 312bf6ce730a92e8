// internal/room/room_store.go
package room

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Store manages the active rooms in memory, keyed by join code.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewStore initializes an empty Store.
func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

// CreateRoom mints a room under a fresh join code and registers it. The
// room's OnEmpty is wired to delete it from the store.
func (s *Store) CreateRoom() *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for {
		code = newCode()
		if _, taken := s.rooms[code]; !taken {
			break
		}
	}
	r := New(code)
	r.OnEmpty = s.Delete
	s.rooms[code] = r

	logrus.WithField("room", code).Info("room created")
	return r
}

// Get retrieves a room by join code. Lookup is case-insensitive.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[strings.ToUpper(code)]
	return r, ok
}

// Delete removes a room by join code. Wired as the room's OnEmpty callback.
func (s *Store) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		delete(s.rooms, code)
		logrus.WithField("room", code).Info("room deleted")
	}
}

// List returns a snapshot of all active rooms.
func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

// newCode draws a random join code from a CSPRNG; collisions are resolved by
// the caller against the live room set.
func newCode() string {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken.
			panic(err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}
