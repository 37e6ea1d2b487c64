package reveal

import (
	"context"

	"github.com/Belphemur/ReelRoulette/internal/models"
)

// Surface is whatever renders the belt: a browser on the other end of the API,
// or the headless GridSurface.
type Surface interface {
	// RenderBelt lays out one slot per belt item.
	RenderBelt(ctx context.Context, belt []models.CatalogItem) error

	// Layout reports the real slot pitch and viewport width after rendering.
	Layout(ctx context.Context) (Layout, error)

	// SetOffset moves the belt. It is called once per frame.
	SetOffset(offset float64) error

	// MeasureSlots returns the rendered box of every slot and the viewport width.
	MeasureSlots() ([]SlotBox, float64, error)
}
