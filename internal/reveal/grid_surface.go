package reveal

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/Belphemur/ReelRoulette/internal/models"
)

// GridOptions describes a headless belt of fixed-width slots.
type GridOptions struct {
	SlotWidth     float64 // Width of a slot's box
	Gap           float64 // Space after each slot; the pitch is SlotWidth + Gap
	ViewportWidth float64
	RoundPixels   bool // Snap offsets and boxes to whole pixels like a browser compositor
}

// GridSurface is an in-memory Surface. Its measured boxes carry the same kinds
// of imprecision a real layout has: the gap shifts slot centres away from the
// pitch centre and pixel rounding moves both the belt and the boxes.
type GridSurface struct {
	mu     sync.Mutex
	opts   GridOptions
	slots  int
	offset float64
	frames int
}

// NewGridSurface creates a headless surface.
func NewGridSurface(opts GridOptions) *GridSurface {
	return &GridSurface{opts: opts}
}

func (g *GridSurface) RenderBelt(_ context.Context, belt []models.CatalogItem) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.slots = len(belt)
	g.offset = 0
	g.frames = 0
	return nil
}

func (g *GridSurface) Layout(_ context.Context) (Layout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.slots == 0 {
		return Layout{}, errors.New("belt not rendered")
	}
	return Layout{ItemWidth: g.opts.SlotWidth + g.opts.Gap, ViewportWidth: g.opts.ViewportWidth}, nil
}

func (g *GridSurface) SetOffset(offset float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.opts.RoundPixels {
		offset = math.Round(offset)
	}
	g.offset = offset
	g.frames++
	return nil
}

func (g *GridSurface) MeasureSlots() ([]SlotBox, float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pitch := g.opts.SlotWidth + g.opts.Gap
	boxes := make([]SlotBox, g.slots)
	for i := range boxes {
		left := float64(i)*pitch - g.offset
		width := g.opts.SlotWidth
		if g.opts.RoundPixels {
			left = math.Round(left)
			width = math.Round(width)
		}
		boxes[i] = SlotBox{Index: i, Left: left, Width: width}
	}
	return boxes, g.opts.ViewportWidth, nil
}

// Offset returns the last offset applied.
func (g *GridSurface) Offset() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.offset
}

// Frames returns how many offsets were applied since the belt was rendered.
func (g *GridSurface) Frames() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frames
}
