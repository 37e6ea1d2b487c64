package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

// IdentityParser reads the server root document for the machine identifier used
// in web-viewer links.
type IdentityParser struct{}

// NewIdentityParser creates a new identity parser instance
func NewIdentityParser() *IdentityParser {
	return &IdentityParser{}
}

type markupIdentity struct {
	MachineIdentifier string `xml:"machineIdentifier,attr"`
	FriendlyName      string `xml:"friendlyName,attr"`
	Version           string `xml:"version,attr"`
}

type jsonIdentity struct {
	MediaContainer *struct {
		MachineIdentifier flexString `json:"machineIdentifier"`
		FriendlyName      flexString `json:"friendlyName"`
		Version           flexString `json:"version"`
	} `json:"MediaContainer"`
}

// ParseOne extracts the server identity. A document without a machine identifier
// is an error since the identity is useless without it.
func (p *IdentityParser) ParseOne(body io.Reader) (*models.ServerIdentity, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	format, payload, err := sniffFormat(payload)
	if err != nil {
		return nil, err
	}

	var identity models.ServerIdentity
	switch format {
	case formatJSON:
		var doc jsonIdentity
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("decode JSON identity: %w", err)
		}
		if doc.MediaContainer != nil {
			identity = models.ServerIdentity{
				MachineIdentifier: clean(string(doc.MediaContainer.MachineIdentifier)),
				FriendlyName:      clean(string(doc.MediaContainer.FriendlyName)),
				Version:           clean(string(doc.MediaContainer.Version)),
			}
		}
	case formatMarkup:
		var doc markupIdentity
		if err := newXMLDecoder(bytes.NewReader(payload)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode markup identity: %w", err)
		}
		identity = models.ServerIdentity{
			MachineIdentifier: clean(doc.MachineIdentifier),
			FriendlyName:      clean(doc.FriendlyName),
			Version:           clean(doc.Version),
		}
	}

	if identity.MachineIdentifier == "" {
		return nil, errors.New("server document has no machineIdentifier")
	}

	logger := config.GetLogger()
	logger.Debug().
		Str("machine_identifier", identity.MachineIdentifier).
		Str("friendly_name", identity.FriendlyName).
		Msg("Parsed server identity")
	return &identity, nil
}

// SectionListParser reads the list of library sections.
type SectionListParser struct{}

// NewSectionListParser creates a new section list parser instance
func NewSectionListParser() *SectionListParser {
	return &SectionListParser{}
}

type markupSections struct {
	Directories []struct {
		Key   string `xml:"key,attr"`
		Title string `xml:"title,attr"`
		Type  string `xml:"type,attr"`
	} `xml:"Directory"`
}

type jsonSections struct {
	MediaContainer *struct {
		Directory []struct {
			Key   flexString `json:"key"`
			Title flexString `json:"title"`
			Type  flexString `json:"type"`
		} `json:"Directory"`
	} `json:"MediaContainer"`
}

// ParseList returns every section whose key is numeric; others are skipped.
func (p *SectionListParser) ParseList(body io.Reader) ([]models.Section, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	format, payload, err := sniffFormat(payload)
	if err != nil {
		return nil, err
	}

	type entry struct{ key, title, kind string }
	var entries []entry

	switch format {
	case formatJSON:
		var doc jsonSections
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("decode JSON sections: %w", err)
		}
		if doc.MediaContainer != nil {
			for _, d := range doc.MediaContainer.Directory {
				entries = append(entries, entry{string(d.Key), string(d.Title), string(d.Type)})
			}
		}
	case formatMarkup:
		var doc markupSections
		if err := newXMLDecoder(bytes.NewReader(payload)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode markup sections: %w", err)
		}
		for _, d := range doc.Directories {
			entries = append(entries, entry{d.Key, d.Title, d.Type})
		}
	}

	logger := config.GetLogger()
	sections := make([]models.Section, 0, len(entries))
	for _, e := range entries {
		id, err := strconv.Atoi(clean(e.key))
		if err != nil {
			logger.Debug().Str("key", e.key).Msg("Skipping section with non-numeric key")
			continue
		}
		sections = append(sections, models.Section{ID: id, Title: clean(e.title), Type: clean(e.kind)})
	}
	return sections, nil
}
