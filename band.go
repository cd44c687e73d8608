package scrollspy

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidMargin is returned when a root margin string cannot be parsed.
var ErrInvalidMargin = errors.New("invalid margin")

// Unit specifies how a Margin is interpreted.
type Unit uint8

const (
	UnitFixed   Unit = iota // Absolute cells (px in the CSS shorthand)
	UnitPercent             // Percentage of the viewport dimension
)

// Margin is one side of an activation band. Positive values grow the
// observed root past the viewport edge, negative values pull it inward.
type Margin struct {
	Amount float64
	Unit   Unit
}

// Fixed returns a Margin of n cells.
func Fixed(n int) Margin {
	return Margin{Amount: float64(n), Unit: UnitFixed}
}

// Percent returns a Margin as a percentage of the viewport dimension.
// The value is on a 0-100 scale (-40.0 = -40%).
func Percent(p float64) Margin {
	return Margin{Amount: p, Unit: UnitPercent}
}

// Resolve computes the margin in cells given the viewport dimension it
// applies to.
func (m Margin) Resolve(available int) int {
	switch m.Unit {
	case UnitPercent:
		return int(float64(available) * m.Amount / 100.0)
	default:
		return int(m.Amount)
	}
}

func (m Margin) String() string {
	if m.Unit == UnitPercent {
		return strconv.FormatFloat(m.Amount, 'g', -1, 64) + "%"
	}
	return strconv.FormatFloat(m.Amount, 'g', -1, 64) + "px"
}

// Band narrows (or widens) the viewport to the area in which visible
// region area counts toward activation. It has the semantics of an
// intersection observer's root margin.
type Band struct {
	Top, Right, Bottom, Left Margin
}

// DefaultBand is the central 20% vertical strip of the viewport.
func DefaultBand() Band {
	return Band{
		Top:    Percent(-40),
		Right:  Fixed(0),
		Bottom: Percent(-40),
		Left:   Fixed(0),
	}
}

// Apply returns the activation rectangle for the given viewport.
// Top and bottom percentages resolve against the viewport height, left
// and right against its width. A band that collapses the viewport
// entirely yields an empty Rect.
func (b Band) Apply(viewport Rect) Rect {
	root := viewport.Inset(Edges{
		Top:    -b.Top.Resolve(viewport.Height),
		Right:  -b.Right.Resolve(viewport.Width),
		Bottom: -b.Bottom.Resolve(viewport.Height),
		Left:   -b.Left.Resolve(viewport.Width),
	})
	if root.IsEmpty() {
		return Rect{}
	}
	return root
}

// String formats the band as CSS margin shorthand with all four sides.
func (b Band) String() string {
	return strings.Join([]string{
		b.Top.String(), b.Right.String(), b.Bottom.String(), b.Left.String(),
	}, " ")
}

// ParseBand parses CSS margin shorthand ("-40% 0px -40% 0px") into a Band.
// One to four values are accepted and expanded the way CSS does.
// Each value is a number suffixed with px or %, or a bare 0.
func ParseBand(s string) (Band, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 4 {
		return Band{}, fmt.Errorf("%w: %q: want 1 to 4 values", ErrInvalidMargin, s)
	}

	margins := make([]Margin, len(fields))
	for i, f := range fields {
		m, err := parseMargin(f)
		if err != nil {
			return Band{}, err
		}
		margins[i] = m
	}

	switch len(margins) {
	case 1:
		return Band{Top: margins[0], Right: margins[0], Bottom: margins[0], Left: margins[0]}, nil
	case 2:
		return Band{Top: margins[0], Right: margins[1], Bottom: margins[0], Left: margins[1]}, nil
	case 3:
		return Band{Top: margins[0], Right: margins[1], Bottom: margins[2], Left: margins[1]}, nil
	default:
		return Band{Top: margins[0], Right: margins[1], Bottom: margins[2], Left: margins[3]}, nil
	}
}

func parseMargin(s string) (Margin, error) {
	var (
		num  string
		unit Unit
	)
	switch {
	case strings.HasSuffix(s, "%"):
		num, unit = strings.TrimSuffix(s, "%"), UnitPercent
	case strings.HasSuffix(s, "px"):
		num, unit = strings.TrimSuffix(s, "px"), UnitFixed
	default:
		num, unit = s, UnitFixed
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Margin{}, fmt.Errorf("%w: %q", ErrInvalidMargin, s)
	}
	// Unitless values are only legal for zero.
	if num == s && v != 0 {
		return Margin{}, fmt.Errorf("%w: %q: missing px or %% unit", ErrInvalidMargin, s)
	}
	return Margin{Amount: v, Unit: unit}, nil
}
