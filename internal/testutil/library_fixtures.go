package testutil

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// LibraryItemOptions describes one item of a generated section payload.
type LibraryItemOptions struct {
	RatingKey int
	Type      string // "movie" (a Video element) or "show" (a Directory element)
	Title     string
	Year      int
	Thumb     string // Omitted when empty
	Genres    []string
	Directors []string
}

// GenerateLibraryItems returns n movies with consecutive rating keys starting at
// firstKey. Every third item has no artwork.
func GenerateLibraryItems(n, firstKey int) []LibraryItemOptions {
	items := make([]LibraryItemOptions, n)
	for i := range items {
		key := firstKey + i
		items[i] = LibraryItemOptions{
			RatingKey: key,
			Type:      "movie",
			Title:     fmt.Sprintf("Movie %d", key),
			Year:      1970 + i%50,
			Genres:    []string{"Drama"},
		}
		if i%3 != 2 {
			items[i].Thumb = fmt.Sprintf("/library/metadata/%d/thumb/1700000000", key)
		}
	}
	return items
}

// GenerateSectionXML renders items as a markup section payload, the way the
// media server answers /library/sections/{id}/all.
func GenerateSectionXML(items []LibraryItemOptions) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&sb, `<MediaContainer size="%d" allowSync="1">`+"\n", len(items))
	for _, item := range items {
		element := "Video"
		if item.Type == "show" {
			element = "Directory"
		}
		fmt.Fprintf(&sb, `  <%s ratingKey="%d" key="%s" type="%s" title="%s"`,
			element, item.RatingKey, itemKey(item), html.EscapeString(item.Type), html.EscapeString(item.Title))
		if item.Year > 0 {
			fmt.Fprintf(&sb, ` year="%d"`, item.Year)
		}
		if item.Thumb != "" {
			fmt.Fprintf(&sb, ` thumb="%s"`, html.EscapeString(item.Thumb))
		}
		sb.WriteString(">\n")
		for _, g := range item.Genres {
			fmt.Fprintf(&sb, `    <Genre tag="%s"/>`+"\n", html.EscapeString(g))
		}
		for _, d := range item.Directors {
			fmt.Fprintf(&sb, `    <Director tag="%s"/>`+"\n", html.EscapeString(d))
		}
		fmt.Fprintf(&sb, "  </%s>\n", element)
	}
	sb.WriteString("</MediaContainer>\n")
	return sb.String()
}

// GenerateSectionJSON renders items as a JSON envelope section payload.
func GenerateSectionJSON(items []LibraryItemOptions) string {
	type tag struct {
		Tag string `json:"tag"`
	}
	type metadata struct {
		RatingKey string `json:"ratingKey"`
		Key       string `json:"key"`
		Type      string `json:"type"`
		Title     string `json:"title"`
		Year      int    `json:"year,omitempty"`
		Thumb     string `json:"thumb,omitempty"`
		Genre     []tag  `json:"Genre,omitempty"`
		Director  []tag  `json:"Director,omitempty"`
	}

	entries := make([]metadata, 0, len(items))
	for _, item := range items {
		m := metadata{
			RatingKey: fmt.Sprint(item.RatingKey),
			Key:       itemKey(item),
			Type:      item.Type,
			Title:     item.Title,
			Year:      item.Year,
			Thumb:     item.Thumb,
		}
		for _, g := range item.Genres {
			m.Genre = append(m.Genre, tag{g})
		}
		for _, d := range item.Directors {
			m.Director = append(m.Director, tag{d})
		}
		entries = append(entries, m)
	}

	doc := map[string]any{"MediaContainer": map[string]any{"size": len(entries), "Metadata": entries}}
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(raw)
}

// GenerateIdentityXML renders the server root document.
func GenerateIdentityXML(machineID, friendlyName string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="0" friendlyName="%s" machineIdentifier="%s" version="1.41.0"></MediaContainer>`,
		html.EscapeString(friendlyName), html.EscapeString(machineID))
}

func itemKey(item LibraryItemOptions) string {
	if item.Type == "show" {
		return fmt.Sprintf("/library/metadata/%d/children", item.RatingKey)
	}
	return fmt.Sprintf("/library/metadata/%d", item.RatingKey)
}
