package services

import (
	"github.com/Belphemur/ReelRoulette/internal/links"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

// LinkDeriver turns a drawn item into a Pick carrying its playback and poster URLs.
// *links.Builder implements it.
type LinkDeriver interface {
	Pick(item models.CatalogItem, index int, poster links.Size) *models.Pick
}

// Selector defines the interface for the authoritative random draw
type Selector interface {
	// Draw picks one item uniformly at random. It returns apperrors.ErrEmptyPool
	// for an empty pool. A nil deriver yields a Pick without URLs.
	Draw(pool models.SelectionPool, deriver LinkDeriver, poster links.Size) (*models.Pick, error)
}
