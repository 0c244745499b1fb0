package chat

import (
	"sync"

	domain "github.com/example/ezcomm-chat/domain/chat"
)

// DefaultPalette is the set of colors handed out to joining users.
var DefaultPalette = []domain.Color{
	"#E53935", "#8E24AA", "#3949AB", "#039BE5",
	"#00897B", "#7CB342", "#FDD835", "#FB8C00",
	"#6D4C41", "#D81B60", "#5E35B1", "#00ACC1",
}

// ColorAllocator assigns palette colors so that concurrently active users
// get distinct colors while the palette has free entries. Once every color
// is in use it shares the least-used one.
type ColorAllocator struct {
	palette []domain.Color
	inUse   map[domain.Color]int
	mu      sync.Mutex
}

// NewColorAllocator creates an allocator over palette. An empty palette
// falls back to DefaultPalette.
func NewColorAllocator(palette []domain.Color) *ColorAllocator {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	p := make([]domain.Color, len(palette))
	copy(p, palette)
	return &ColorAllocator{
		palette: p,
		inUse:   make(map[domain.Color]int, len(p)),
	}
}

// Allocate returns the least-used palette color, lowest index first.
func (a *ColorAllocator) Allocate() domain.Color {
	a.mu.Lock()
	defer a.mu.Unlock()

	best := a.palette[0]
	for _, c := range a.palette[1:] {
		if a.inUse[c] < a.inUse[best] {
			best = c
		}
	}
	a.inUse[best]++
	return best
}

// Release returns a color to the pool. Releasing a free or unknown color is a no-op.
func (a *ColorAllocator) Release(c domain.Color) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.inUse[c]
	if !ok {
		return
	}
	if n <= 1 {
		delete(a.inUse, c)
		return
	}
	a.inUse[c] = n - 1
}

// InUse returns how many holders c currently has.
func (a *ColorAllocator) InUse(c domain.Color) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse[c]
}
