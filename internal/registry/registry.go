package registry

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"
)

// codeAlphabet avoids the characters players misread over voice: no 0/O, no
// 1/I.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the fixed room code size.
const CodeLength = 6

// ErrExhausted is returned when code generation keeps colliding, which only
// happens when the registry is effectively full.
var ErrExhausted = errors.New("no free room code")

type entry struct {
	matchID   string
	createdAt time.Time
	lastSeen  time.Time
}

// Registry maps human-friendly room codes to authoritative match ids. Codes
// are reserved before the match exists and bound once it does; unbound or
// long-idle entries are swept by the janitor.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*entry

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func New() *Registry {
	return &Registry{
		rooms:  make(map[string]*entry),
		stopCh: make(chan struct{}),
	}
}

// NewCode reserves a fresh unique code. The reservation holds the code
// against concurrent creates until Bind or Remove.
func (r *Registry) NewCode() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for attempt := 0; attempt < 64; attempt++ {
		code, err := generateCode(CodeLength)
		if err != nil {
			return "", err
		}
		if _, taken := r.rooms[code]; taken {
			continue
		}
		now := time.Now()
		r.rooms[code] = &entry{createdAt: now, lastSeen: now}
		return code, nil
	}
	return "", ErrExhausted
}

// Bind attaches the created match to a reserved code.
func (r *Registry) Bind(code, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.rooms[normalize(code)]; ok {
		e.matchID = matchID
		e.lastSeen = time.Now()
	}
}

// Resolve returns the match id for a code. Reserved-but-unbound codes do not
// resolve.
func (r *Registry) Resolve(code string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[normalize(code)]
	if !ok || e.matchID == "" {
		return "", false
	}
	return e.matchID, true
}

// Touch marks a room as alive so the janitor leaves it be.
func (r *Registry) Touch(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.rooms[normalize(code)]; ok {
		e.lastSeen = time.Now()
	}
}

// Remove drops a code, releasing it for reuse.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, normalize(code))
}

// Len returns the number of registered codes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Sweep removes entries idle for longer than maxAge and returns how many
// went. Rooms normally remove themselves on shutdown; the sweep catches the
// ones that never got that far.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for code, e := range r.rooms {
		if e.lastSeen.Before(cutoff) {
			delete(r.rooms, code)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps on the given interval until Stop.
func (r *Registry) StartJanitor(interval, maxAge time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep(maxAge)
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the janitor and waits for it to exit.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateCode(n int) (string, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		x, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[x.Int64()]
	}
	return string(out), nil
}
