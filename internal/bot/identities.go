package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Identity is a display profile for a seated bot. Bots cycle through a fixed
// pool so rosters stay readable; the pool can be overridden from a JSON file
// at startup.
type Identity struct {
	DisplayName string `json:"display_name"`
	AvatarIndex int    `json:"avatar_index"`
	Difficulty  string `json:"difficulty,omitempty"`
}

var defaultIdentities = []Identity{
	{DisplayName: "Benny", AvatarIndex: 1},
	{DisplayName: "Clara", AvatarIndex: 2},
	{DisplayName: "Dexter", AvatarIndex: 3},
	{DisplayName: "Fiona", AvatarIndex: 4},
	{DisplayName: "Gus", AvatarIndex: 5},
	{DisplayName: "Hazel", AvatarIndex: 6},
	{DisplayName: "Milo", AvatarIndex: 7},
	{DisplayName: "Pearl", AvatarIndex: 8},
}

var (
	loadedIdentities []Identity
	loadOnce         sync.Once
	loadErr          error
)

// LoadIdentities replaces the default pool with profiles from the given path.
// Safe to skip; the built-in pool is used when the file is absent.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var identities []Identity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		if len(identities) > 0 {
			loadedIdentities = identities
		}
	})
	return loadErr
}

// IdentityAt returns the pool entry for the given seat index, wrapping around
// when more bots are seated than profiles exist.
func IdentityAt(index int) Identity {
	pool := defaultIdentities
	if len(loadedIdentities) > 0 {
		pool = loadedIdentities
	}
	if index < 0 {
		index = -index
	}
	return pool[index%len(pool)]
}
