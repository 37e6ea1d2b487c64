package parser

import (
	"io"

	"github.com/Belphemur/ReelRoulette/internal/models"
)

// ItemParser turns one section payload into normalized catalog items.
type ItemParser interface {
	ParseItems(body io.Reader, sectionID int) ([]models.CatalogItem, error)
}

// SingleResultParser parses a payload that describes exactly one object.
type SingleResultParser[T any] interface {
	ParseOne(body io.Reader) (*T, error)
}

// ListParser parses a payload into a flat list of objects.
type ListParser[T any] interface {
	ParseList(body io.Reader) ([]T, error)
}
