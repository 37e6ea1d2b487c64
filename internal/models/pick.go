package models

// Pick is the authoritative result of one random draw.
type Pick struct {
	Item          CatalogItem `json:"item"`
	PoolIndex     int         `json:"poolIndex"`
	DirectPlayURL string      `json:"directPlayUrl"`
	FallbackURL   string      `json:"fallbackUrl"`
	PosterURL     string      `json:"posterUrl,omitempty"` // Empty when the item has no artwork
}

// HasPoster reports whether a poster URL could be derived for the picked item.
func (p Pick) HasPoster() bool {
	return p.PosterURL != ""
}
