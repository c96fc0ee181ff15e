package colors

// DefaultPalette is the trace palette used when none is configured.
var DefaultPalette = []string{
	"#ff0000", "#0000ff", "#46e646", "#00ccff", "#ff9900", "#ff00ff",
	"#ffff00", "#288228", "#9933ff", "#50f0be", "#8c645a",
}

type entry struct {
	color string
	count int
}

// Allocator hands out palette colors, preferring the least used one.
type Allocator struct {
	entries []entry
}

// NewAllocator returns an allocator over palette, or DefaultPalette when
// palette is empty. Duplicate colors are kept once.
func NewAllocator(palette []string) *Allocator {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	a := &Allocator{entries: make([]entry, 0, len(palette))}
	seen := make(map[string]bool, len(palette))
	for _, c := range palette {
		if seen[c] {
			continue
		}
		seen[c] = true
		a.entries = append(a.entries, entry{color: c})
	}
	return a
}

// Issue returns the color with the lowest usage count, first in palette
// order on ties, and counts it as used.
func (a *Allocator) Issue() string {
	if len(a.entries) == 0 {
		return ""
	}
	lowest := 0
	for i := 1; i < len(a.entries); i++ {
		if a.entries[i].count < a.entries[lowest].count {
			lowest = i
		}
	}
	a.entries[lowest].count++
	return a.entries[lowest].color
}

// Release gives back one use of color. Unknown colors are ignored and counts
// never go negative.
func (a *Allocator) Release(color string) {
	if i := a.find(color); i >= 0 && a.entries[i].count > 0 {
		a.entries[i].count--
	}
}

// Reassign releases oldColor and counts newColor as used. The new color is
// caller chosen, so least-usage selection does not apply.
func (a *Allocator) Reassign(oldColor, newColor string) {
	a.Release(oldColor)
	if i := a.find(newColor); i >= 0 {
		a.entries[i].count++
	}
}

// Count returns the usage count of color, or -1 if it is not in the palette.
func (a *Allocator) Count(color string) int {
	if i := a.find(color); i >= 0 {
		return a.entries[i].count
	}
	return -1
}

// Palette returns the colors in selection order.
func (a *Allocator) Palette() []string {
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.color
	}
	return out
}

func (a *Allocator) find(color string) int {
	for i, e := range a.entries {
		if e.color == color {
			return i
		}
	}
	return -1
}
