// Package display composes what the screen and the key lights show for
// the current navigation state.
package display

import (
	"fmt"
	"strings"

	"macropad-service/internal/config"
	"macropad-service/internal/keys"
)

const (
	// Columns is the width of every text line.
	Columns = 20
	// Rows is title, hint and three rows of three cells.
	Rows = 5
	// Lights is one indicator per key, in key ordinal order.
	Lights = keys.SpecialCount + keys.ActionCount

	cellWidth = 4
	emptyCell = "[ -- ]"
)

// Frame is a complete picture for the hardware layer. Colors are stored
// at full intensity; Brightness scales all of them.
type Frame struct {
	Lines      [Rows]string
	Colors     [Lights]config.Color
	Brightness float64
}

// Scaled returns light i with brightness applied.
func (f Frame) Scaled(i int) config.Color {
	c := f.Colors[i]
	b := f.Brightness
	if b < 0 {
		b = 0
	} else if b > 1 {
		b = 1
	}
	return config.Color{
		uint8(float64(c[0])*b + 0.5),
		uint8(float64(c[1])*b + 0.5),
		uint8(float64(c[2])*b + 0.5),
	}
}

func (f Frame) String() string {
	return strings.Join(f.Lines[:], "\n")
}

// PadCenter trims text, cuts it to width and centers it, putting the odd
// space on the left.
func PadCenter(text string, width int) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) > width {
		r = r[:width]
	}
	n := len(r)
	if n == width {
		return string(r)
	}
	left := (width - n + 1) / 2
	right := (width - n) / 2
	return strings.Repeat(" ", left) + string(r) + strings.Repeat(" ", right)
}

func hintLine(hint string) string {
	return "<- " + PadCenter(hint, Columns-6) + " ->"
}

func cell(label string) string {
	return "[" + PadCenter(label, cellWidth) + "]"
}

func newFrame(colors config.ColorScheme) Frame {
	f := Frame{Brightness: colors.Brightness}
	f.Colors[keys.Previous.Code] = colors.Previous
	f.Colors[keys.Select.Code] = colors.Select
	f.Colors[keys.Next.Code] = colors.Next
	return f
}

func (f *Frame) setCells(cells [keys.ActionCount]string) {
	for row := 0; row < 3; row++ {
		f.Lines[2+row] = strings.Join(cells[row*3:row*3+3], " ")
	}
}

// Home renders the overview for page. canResume selects the [BACK] hint.
func Home(store *config.Store, page int, canResume bool) Frame {
	colors := store.Colors()
	f := newFrame(colors)
	f.Lines[0] = PadCenter(fmt.Sprintf("HOME: %d", page+1), Columns)
	if canResume {
		f.Lines[1] = hintLine("[BACK]")
	} else {
		f.Lines[1] = hintLine("[ -- ]")
	}

	var cells [keys.ActionCount]string
	profiles := store.Page(page)
	for i := range cells {
		if i >= len(profiles) {
			cells[i] = emptyCell
			continue
		}
		p := profiles[i]
		cells[i] = cell(p.TitleShort)
		if p.Color != nil {
			f.Colors[keys.SpecialCount+i] = *p.Color
		} else {
			f.Colors[keys.SpecialCount+i] = colors.Default
		}
	}
	f.setCells(cells)
	return f
}

// Profile renders the bindings of an active profile.
func Profile(p config.Profile, colors config.ColorScheme) Frame {
	f := newFrame(colors)
	f.Lines[0] = PadCenter(p.Title, Columns)
	f.Lines[1] = hintLine("[HOME]")

	var cells [keys.ActionCount]string
	for i := range cells {
		if i >= len(p.Keys) {
			cells[i] = emptyCell
			continue
		}
		cells[i] = cell(p.Label(i))
		b := p.Keys[i]
		switch {
		case !b.Bound():
		case b.Color != nil:
			f.Colors[keys.SpecialCount+i] = *b.Color
		default:
			f.Colors[keys.SpecialCount+i] = colors.Default
		}
	}
	f.setCells(cells)
	return f
}
