package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"uno/internal/ports"
)

// avatarPoolSize matches the avatar set shipped with the client.
const avatarPoolSize = 8

// Profile is the generated identity for a new account.
type Profile struct {
	DisplayName string
	Avatar      string
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser gives a newly created account a friendly display name and a
// default avatar so they enter their first room with a readable identity.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Profile, error) {
	if s.accounts == nil {
		return Profile{}, fmt.Errorf("onboarding service not configured")
	}

	profile := Profile{
		DisplayName: s.generateFriendlyName(),
		Avatar:      strconv.Itoa(s.rng.Intn(avatarPoolSize) + 1),
	}
	if err := s.accounts.UpdateProfile(ctx, userID, profile.DisplayName, profile.DisplayName, profile.Avatar); err != nil {
		return profile, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Lucky", "Swift", "Sunny", "Bold", "Calm", "Merry", "Sly", "Zesty", "Witty", "Wild"}
	nouns := []string{"Llama", "Panda", "Otter", "Koala", "Tiger", "Raven", "Fox", "Gecko", "Bison", "Crane"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
