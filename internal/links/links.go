// Package links derives the playback, web-viewer and poster URLs of a picked item.
package links

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Belphemur/ReelRoulette/internal/client"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

// Size is a poster resolution in pixels.
type Size struct {
	Width  int
	Height int
}

var (
	// PosterStrip is the resolution used for belt slots.
	PosterStrip = Size{Width: 300, Height: 450}
	// PosterCard is the resolution used for the reveal card.
	PosterCard = Size{Width: 648, Height: 972}
)

// Builder builds URLs for one server. It is immutable and safe for concurrent use.
type Builder struct {
	baseURL   string
	token     string
	machineID string
}

// NewBuilder creates a builder for the given credentials. identity may be nil when
// the server identity could not be read; fallback URLs then omit the machine id.
func NewBuilder(creds models.Credentials, identity *models.ServerIdentity) (*Builder, error) {
	baseURL, err := client.NormalizeBaseURL(creds.ServerAddress)
	if err != nil {
		return nil, err
	}
	b := &Builder{baseURL: baseURL, token: creds.AuthToken}
	if identity != nil {
		b.machineID = identity.MachineIdentifier
	}
	return b, nil
}

// DirectPlayURL deep links into the server's metadata endpoint for the item.
func (b *Builder) DirectPlayURL(item models.CatalogItem) string {
	id := NumericID(item)
	if id == "" {
		id = url.PathEscape(item.ID)
	}
	return b.baseURL + "/library/metadata/" + id
}

// FallbackURL opens the item in the server's web viewer.
func (b *Builder) FallbackURL(item models.CatalogItem) string {
	key := item.Key
	if key == "" {
		key = "/library/metadata/" + item.ID
	}

	var sb strings.Builder
	sb.WriteString(b.baseURL)
	sb.WriteString("/web/index.html#!/server/")
	if b.machineID != "" {
		sb.WriteString(url.PathEscape(b.machineID))
		sb.WriteString("/")
	}
	sb.WriteString("details?key=")
	sb.WriteString(url.QueryEscape(key))
	return sb.String()
}

// PosterURL returns the transcoded poster URL at the requested size, or "" when
// the item carries no artwork path.
func (b *Builder) PosterURL(item models.CatalogItem, size Size) string {
	if item.PosterSourcePath == "" {
		return ""
	}
	q := url.Values{}
	q.Set("width", strconv.Itoa(size.Width))
	q.Set("height", strconv.Itoa(size.Height))
	q.Set("url", item.PosterSourcePath)
	q.Set("X-Plex-Token", b.token)
	return b.baseURL + "/photo/:/transcode?" + q.Encode()
}

// Pick fills in every derived URL for the item drawn at index.
func (b *Builder) Pick(item models.CatalogItem, index int, poster Size) *models.Pick {
	return &models.Pick{
		Item:          item,
		PoolIndex:     index,
		DirectPlayURL: b.DirectPlayURL(item),
		FallbackURL:   b.FallbackURL(item),
		PosterURL:     b.PosterURL(item, poster),
	}
}

// NumericID extracts the numeric metadata id of an item: its id when that is
// all digits, otherwise the last all-digit segment of its key path
// ("/library/metadata/42/children" gives "42"). It returns "" when neither
// carries one.
func NumericID(item models.CatalogItem) string {
	if isDigits(item.ID) {
		return item.ID
	}
	for _, candidate := range []string{item.Key, item.ID} {
		segments := strings.Split(strings.Trim(candidate, "/"), "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if isDigits(segments[i]) {
				return segments[i]
			}
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
