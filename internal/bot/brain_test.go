package bot

import (
	"math/rand"
	"testing"

	"uno/internal/domain"
)

func brainMatch(hand []domain.Card) *domain.Match {
	return &domain.Match{
		Hands:       map[string][]domain.Card{"bot-1": hand},
		ActiveColor: domain.ColorRed,
		ActiveValue: domain.ValueFive,
		TurnOrder:   []string{"bot-1", "u1"},
		Direction:   1,
		UnoFlags:    map[string]bool{},
	}
}

func testBrain() *HeuristicBrain {
	return NewBrain(rand.New(rand.NewSource(1)))
}

func TestBrainPrefersActionCards(t *testing.T) {
	hand := []domain.Card{
		{Color: domain.ColorRed, Value: domain.ValueNine},
		{Color: domain.ColorRed, Value: domain.ValueSkip},
		{Color: domain.ColorWild, Value: domain.ValueWild},
	}
	b := testBrain()
	for i := 0; i < 20; i++ {
		move, err := b.CalculateMove(brainMatch(hand), "bot-1")
		if err != nil {
			t.Fatalf("CalculateMove error: %v", err)
		}
		if move.Draw {
			t.Fatal("bot should play, not draw")
		}
		if move.Card.Value != domain.ValueSkip {
			t.Fatalf("picked %v, want the skip", move.Card)
		}
	}
}

func TestBrainPrefersNumericOverWild(t *testing.T) {
	hand := []domain.Card{
		{Color: domain.ColorRed, Value: domain.ValueNine},
		{Color: domain.ColorWild, Value: domain.ValueWild},
	}
	b := testBrain()
	for i := 0; i < 20; i++ {
		move, _ := b.CalculateMove(brainMatch(hand), "bot-1")
		if move.Card.Value != domain.ValueNine {
			t.Fatalf("picked %v, want the red 9", move.Card)
		}
	}
}

func TestBrainCountsWildDrawFourAsAction(t *testing.T) {
	hand := []domain.Card{
		{Color: domain.ColorRed, Value: domain.ValueNine},
		{Color: domain.ColorWild, Value: domain.ValueWildDraw},
	}
	b := testBrain()
	for i := 0; i < 20; i++ {
		move, _ := b.CalculateMove(brainMatch(hand), "bot-1")
		if move.Card.Value != domain.ValueWildDraw {
			t.Fatalf("picked %v, want the wild draw 4", move.Card)
		}
		if !domain.ValidColor(move.ChosenColor) {
			t.Fatalf("wild play must carry a color, got %q", move.ChosenColor)
		}
	}
}

func TestBrainDrawsWhenNothingPlayable(t *testing.T) {
	hand := []domain.Card{
		{Color: domain.ColorBlue, Value: domain.ValueNine},
		{Color: domain.ColorGreen, Value: domain.ValueSkip},
	}
	move, err := testBrain().CalculateMove(brainMatch(hand), "bot-1")
	if err != nil {
		t.Fatalf("CalculateMove error: %v", err)
	}
	if !move.Draw {
		t.Fatalf("expected a draw, got %+v", move)
	}
}

func TestBrainPreFlagsUnoOnTwoCards(t *testing.T) {
	hand := []domain.Card{
		{Color: domain.ColorRed, Value: domain.ValueNine},
		{Color: domain.ColorBlue, Value: domain.ValueTwo},
	}
	move, _ := testBrain().CalculateMove(brainMatch(hand), "bot-1")
	if !move.CallUno {
		t.Error("bot on two cards must pre-flag UNO")
	}

	three := append(hand, domain.Card{Color: domain.ColorGreen, Value: domain.ValueOne})
	move, _ = testBrain().CalculateMove(brainMatch(three), "bot-1")
	if move.CallUno {
		t.Error("bot on three cards must not flag UNO")
	}
}

func TestDominantColor(t *testing.T) {
	tests := []struct {
		name    string
		hand    []domain.Card
		exclude int
		want    domain.Color
	}{
		{
			"majority color",
			[]domain.Card{
				{Color: domain.ColorWild, Value: domain.ValueWild},
				{Color: domain.ColorGreen, Value: domain.ValueOne},
				{Color: domain.ColorGreen, Value: domain.ValueTwo},
				{Color: domain.ColorBlue, Value: domain.ValueThree},
			},
			0,
			domain.ColorGreen,
		},
		{
			"tie breaks by fixed priority",
			[]domain.Card{
				{Color: domain.ColorWild, Value: domain.ValueWild},
				{Color: domain.ColorBlue, Value: domain.ValueOne},
				{Color: domain.ColorYellow, Value: domain.ValueTwo},
			},
			0,
			domain.ColorYellow,
		},
		{
			"only wilds left",
			[]domain.Card{
				{Color: domain.ColorWild, Value: domain.ValueWild},
				{Color: domain.ColorWild, Value: domain.ValueWildDraw},
			},
			0,
			domain.ColorRed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := dominantColor(tc.hand, tc.exclude); got != tc.want {
				t.Errorf("dominantColor = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
	}{
		{"easy", DifficultyEasy},
		{"HARD", DifficultyHard},
		{"medium", DifficultyMedium},
		{"", DifficultyMedium},
		{"nightmare", DifficultyMedium},
	}
	for _, tc := range tests {
		if got := ParseDifficulty(tc.in); got != tc.want {
			t.Errorf("ParseDifficulty(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestBotIDs(t *testing.T) {
	id := NewID()
	if !IsBot(id) {
		t.Errorf("NewID result %q not recognized as bot", id)
	}
	if IsBot("2b6f3b7e-user") {
		t.Error("user id misclassified as bot")
	}
	if id == NewID() {
		t.Error("ids must be unique")
	}
}

func TestIdentityRotation(t *testing.T) {
	first := IdentityAt(0)
	if first.DisplayName == "" {
		t.Fatal("identity pool empty")
	}
	if got := IdentityAt(len(defaultIdentities)); got != first {
		t.Errorf("rotation should wrap, got %+v", got)
	}
}

func TestAgentPlaysForOwnSeat(t *testing.T) {
	hand := []domain.Card{{Color: domain.ColorRed, Value: domain.ValueNine}}
	a := NewAgent("bot-1", "Benny", DifficultyEasy, rand.New(rand.NewSource(1)))
	move, err := a.Play(brainMatch(hand))
	if err != nil {
		t.Fatalf("Play error: %v", err)
	}
	if move.Draw || move.Card.Value != domain.ValueNine {
		t.Errorf("move = %+v, want the red 9 played", move)
	}
}
