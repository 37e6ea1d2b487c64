package parser

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Belphemur/ReelRoulette/internal/models"
)

// record is one raw upstream item before normalization. It is either a
// markupRecord or a jsonRecord; both flatten to the same intermediate shape.
type record interface {
	flatten() flatRecord
}

// flatRecord holds every field the normalizer reads, as upstream text. Numeric
// values stay textual here so both formats share one parsing path.
type flatRecord struct {
	ratingKey        string
	key              string
	itemType         string
	title            string
	year             string
	summary          string
	contentRating    string
	rating           string
	audienceRating   string
	duration         string
	leafCount        string
	thumb            string
	art              string
	parentThumb      string
	grandparentThumb string
	directors        []string
	cast             []string
	genres           []string
}

// ---------------------------------------------------------------------------
// Markup records
// ---------------------------------------------------------------------------

type markupTag struct {
	Tag string `xml:"tag,attr"`
}

type markupRecord struct {
	XMLName   xml.Name
	Attrs     []xml.Attr  `xml:",any,attr"`
	Directors []markupTag `xml:"Director"`
	Roles     []markupTag `xml:"Role"`
	Genres    []markupTag `xml:"Genre"`
}

func (m *markupRecord) flatten() flatRecord {
	var f flatRecord
	for _, attr := range m.Attrs {
		switch attr.Name.Local {
		case "ratingKey":
			f.ratingKey = attr.Value
		case "key":
			f.key = attr.Value
		case "type":
			f.itemType = attr.Value
		case "title":
			f.title = attr.Value
		case "year":
			f.year = attr.Value
		case "summary":
			f.summary = attr.Value
		case "contentRating":
			f.contentRating = attr.Value
		case "rating":
			f.rating = attr.Value
		case "audienceRating":
			f.audienceRating = attr.Value
		case "duration":
			f.duration = attr.Value
		case "leafCount":
			f.leafCount = attr.Value
		case "thumb":
			f.thumb = attr.Value
		case "art":
			f.art = attr.Value
		case "parentThumb":
			f.parentThumb = attr.Value
		case "grandparentThumb":
			f.grandparentThumb = attr.Value
		}
	}
	f.directors = markupTags(m.Directors)
	f.cast = markupTags(m.Roles)
	f.genres = markupTags(m.Genres)
	return f
}

func markupTags(tags []markupTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Tag)
	}
	return out
}

// ---------------------------------------------------------------------------
// JSON records
// ---------------------------------------------------------------------------

// flexString accepts a JSON string or number and keeps its textual form.
// null leaves the value empty. Anything else is rejected.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = flexString(n.String())
		return nil
	default:
		return fmt.Errorf("unsupported value %s", truncate(string(data), 32))
	}
}

// tagList accepts a bare string, a tagged object ({"tag": "..."}), or an array
// mixing both. Entries that carry no usable value are dropped.
type tagList []string

func (l *tagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, entry := range raw {
			if v, ok := tagValue(entry); ok {
				out = append(out, v)
			}
		}
		*l = out
		return nil
	}
	if v, ok := tagValue(data); ok {
		*l = tagList{v}
	} else {
		*l = nil
	}
	return nil
}

// tagValue extracts the text of one tag entry. Falsy entries (null, false,
// empty strings, objects without a tag) report ok=false.
func tagValue(entry json.RawMessage) (string, bool) {
	entry = bytes.TrimSpace(entry)
	if len(entry) == 0 {
		return "", false
	}
	switch entry[0] {
	case '{':
		var obj struct {
			Tag flexString `json:"tag"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			return "", false
		}
		return string(obj.Tag), obj.Tag != ""
	case '"', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var s flexString
		if err := s.UnmarshalJSON(entry); err != nil {
			return "", false
		}
		return string(s), s != ""
	default:
		return "", false
	}
}

type jsonRecord struct {
	RatingKey        flexString `json:"ratingKey"`
	Key              flexString `json:"key"`
	Type             flexString `json:"type"`
	Title            flexString `json:"title"`
	Year             flexString `json:"year"`
	Summary          flexString `json:"summary"`
	ContentRating    flexString `json:"contentRating"`
	Rating           flexString `json:"rating"`
	AudienceRating   flexString `json:"audienceRating"`
	Duration         flexString `json:"duration"`
	LeafCount        flexString `json:"leafCount"`
	Thumb            flexString `json:"thumb"`
	Art              flexString `json:"art"`
	ParentThumb      flexString `json:"parentThumb"`
	GrandparentThumb flexString `json:"grandparentThumb"`
	Director         tagList    `json:"Director"`
	Role             tagList    `json:"Role"`
	Genre            tagList    `json:"Genre"`
}

func (j *jsonRecord) flatten() flatRecord {
	return flatRecord{
		ratingKey:        string(j.RatingKey),
		key:              string(j.Key),
		itemType:         string(j.Type),
		title:            string(j.Title),
		year:             string(j.Year),
		summary:          string(j.Summary),
		contentRating:    string(j.ContentRating),
		rating:           string(j.Rating),
		audienceRating:   string(j.AudienceRating),
		duration:         string(j.Duration),
		leafCount:        string(j.LeafCount),
		thumb:            string(j.Thumb),
		art:              string(j.Art),
		parentThumb:      string(j.ParentThumb),
		grandparentThumb: string(j.GrandparentThumb),
		directors:        j.Director,
		cast:             j.Role,
		genres:           j.Genre,
	}
}

// ---------------------------------------------------------------------------
// Normalization
// ---------------------------------------------------------------------------

// toCatalogItem maps any raw record to a CatalogItem. It returns an
// ErrMalformedRecord-style reason when the record cannot be addressed or one of
// its numeric fields is not a number.
func toCatalogItem(rec record, sectionID int) (models.CatalogItem, error) {
	f := rec.flatten()

	id := clean(f.ratingKey)
	key := clean(f.key)
	if id == "" {
		id = key
	}
	if id == "" {
		return models.CatalogItem{}, fmt.Errorf("missing ratingKey and key")
	}
	if key == "" {
		key = "/library/metadata/" + id
	}

	year, err := parseOptionalInt(f.year)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("year: %w", err)
	}
	critic, err := parseOptionalFloat(f.rating)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("rating: %w", err)
	}
	audience, err := parseOptionalFloat(f.audienceRating)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("audienceRating: %w", err)
	}
	duration, err := parseOptionalInt64(f.duration)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("duration: %w", err)
	}
	leafCount, err := parseOptionalInt(f.leafCount)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("leafCount: %w", err)
	}

	return models.CatalogItem{
		ID:               id,
		Key:              key,
		SectionID:        sectionID,
		Type:             clean(f.itemType),
		Title:            clean(f.title),
		Year:             year,
		Summary:          clean(f.summary),
		ContentRating:    clean(f.contentRating),
		CriticRating:     critic,
		AudienceRating:   audience,
		DurationMs:       duration,
		LeafCount:        leafCount,
		Directors:        cleanList(f.directors),
		Cast:             cleanList(f.cast),
		Genres:           cleanList(f.genres),
		PosterSourcePath: firstNonEmpty(f.thumb, f.art, f.parentThumb, f.grandparentThumb),
	}, nil
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c := clean(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if c := strings.TrimSpace(v); c != "" {
			return c
		}
	}
	return ""
}

func parseOptionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseOptionalInt64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseOptionalFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
