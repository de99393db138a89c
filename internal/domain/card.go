package domain

// Color identifies a card color. Wild-family cards carry ColorWild until a
// color is chosen for them at play time.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorWild   Color = "wild"
)

// Colors lists the four playable colors in fixed priority order. The order is
// also the tie-break used when a wild color has to be picked automatically.
var Colors = [4]Color{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Value identifies a card face.
type Value string

const (
	ValueZero  Value = "0"
	ValueOne   Value = "1"
	ValueTwo   Value = "2"
	ValueThree Value = "3"
	ValueFour  Value = "4"
	ValueFive  Value = "5"
	ValueSix   Value = "6"
	ValueSeven Value = "7"
	ValueEight Value = "8"
	ValueNine  Value = "9"

	ValueSkip     Value = "skip"
	ValueReverse  Value = "reverse"
	ValueDrawTwo  Value = "draw2"
	ValueWild     Value = "wild"
	ValueWildDraw Value = "wild_draw4"
)

var numberValues = [10]Value{
	ValueZero, ValueOne, ValueTwo, ValueThree, ValueFour,
	ValueFive, ValueSix, ValueSeven, ValueEight, ValueNine,
}

// Card is a single card. Wild-family cards are stored with ColorWild; the
// chosen color lives on the match (ActiveColor), never on the card itself.
type Card struct {
	Color Color `json:"color"`
	Value Value `json:"value"`
}

// IsWild reports whether the card belongs to the wild family.
func (c Card) IsWild() bool {
	return c.Color == ColorWild
}

// IsAction reports whether the card is a penalty/action card. Plain wilds are
// not action cards; wild-draw-four is.
func (c Card) IsAction() bool {
	switch c.Value {
	case ValueSkip, ValueReverse, ValueDrawTwo, ValueWildDraw:
		return true
	}
	return false
}

// ValidColor reports whether col is one of the four playable colors.
func ValidColor(col Color) bool {
	for _, c := range Colors {
		if c == col {
			return true
		}
	}
	return false
}

// BuildDeck produces the full 108-card deck in a fixed order. Per color: one
// zero, two of each 1-9, two each of skip/reverse/draw-two. Plus four wilds
// and four wild-draw-fours.
func BuildDeck() []Card {
	deck := make([]Card, 0, 108)
	for _, col := range Colors {
		deck = append(deck, Card{Color: col, Value: ValueZero})
		for _, v := range numberValues[1:] {
			deck = append(deck, Card{Color: col, Value: v}, Card{Color: col, Value: v})
		}
		for _, v := range []Value{ValueSkip, ValueReverse, ValueDrawTwo} {
			deck = append(deck, Card{Color: col, Value: v}, Card{Color: col, Value: v})
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, Card{Color: ColorWild, Value: ValueWild})
		deck = append(deck, Card{Color: ColorWild, Value: ValueWildDraw})
	}
	return deck
}

// CanPlay reports whether a card is legal on the given active color and value.
// Wild-family cards are always legal; otherwise either the color or the value
// must match.
func CanPlay(active Color, activeValue Value, c Card) bool {
	if c.IsWild() {
		return true
	}
	return c.Color == active || c.Value == activeValue
}

// RemoveFirst removes the first card equal to target from the hand and
// reports whether a copy was found. Duplicates are indistinguishable, so
// first match is sufficient.
func RemoveFirst(hand []Card, target Card) ([]Card, bool) {
	for i, c := range hand {
		if c == target {
			return append(hand[:i], hand[i+1:]...), true
		}
	}
	return hand, false
}

// Holds reports whether the hand contains at least one copy of target.
func Holds(hand []Card, target Card) bool {
	for _, c := range hand {
		if c == target {
			return true
		}
	}
	return false
}
