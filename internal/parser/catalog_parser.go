package parser

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

// CatalogParser normalizes section payloads in either the markup or the JSON
// envelope format into CatalogItems. It is stateless and safe for concurrent use.
type CatalogParser struct{}

// NewCatalogParser creates a new catalog parser instance
func NewCatalogParser() *CatalogParser {
	return &CatalogParser{}
}

// itemElements are the markup element names that carry library items.
var itemElements = map[string]bool{
	"Video":     true,
	"Directory": true,
}

// ParseItems reads the whole payload, sniffs its format and normalizes every
// record it contains. Malformed records are skipped; an error is only returned
// when the document itself cannot be read.
func (p *CatalogParser) ParseItems(body io.Reader, sectionID int) ([]models.CatalogItem, error) {
	logger := config.GetLogger()

	payload, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	format, payload, err := sniffFormat(payload)
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("section_id", sectionID).Str("format", format.String()).Int("bytes", len(payload)).Msg("Parsing section payload")

	var records []record
	switch format {
	case formatJSON:
		records, err = decodeJSONRecords(payload)
	case formatMarkup:
		records, err = decodeMarkupRecords(payload)
	}
	if err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(records))
	skipped := 0
	for i, rec := range records {
		if rec == nil {
			skipped++
			continue
		}
		item, err := toCatalogItem(rec, sectionID)
		if err != nil {
			skipped++
			logger.Debug().Err(&apperrors.ErrMalformedRecord{Index: i, Reason: err.Error()}).Int("section_id", sectionID).Msg("Skipping malformed record")
			continue
		}
		items = append(items, item)
	}

	logger.Debug().
		Int("section_id", sectionID).
		Int("items", len(items)).
		Int("skipped", skipped).
		Msg("Completed section payload normalization")

	return items, nil
}

// jsonItemsEnvelope is the container shape of a JSON section payload.
type jsonItemsEnvelope struct {
	MediaContainer *struct {
		Metadata  []json.RawMessage `json:"Metadata"`
		Video     []json.RawMessage `json:"Video"`
		Directory []json.RawMessage `json:"Directory"`
	} `json:"MediaContainer"`
}

// decodeJSONRecords returns one entry per array element. Elements that do not
// decode into a record are kept as nil so the caller can count them as skipped.
func decodeJSONRecords(payload []byte) ([]record, error) {
	var env jsonItemsEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode JSON envelope: %w", err)
	}
	if env.MediaContainer == nil {
		return nil, errors.New("JSON envelope has no MediaContainer")
	}

	raw := make([]json.RawMessage, 0, len(env.MediaContainer.Metadata)+len(env.MediaContainer.Video)+len(env.MediaContainer.Directory))
	raw = append(raw, env.MediaContainer.Metadata...)
	raw = append(raw, env.MediaContainer.Video...)
	raw = append(raw, env.MediaContainer.Directory...)

	logger := config.GetLogger()
	records := make([]record, 0, len(raw))
	for i, msg := range raw {
		var rec jsonRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			logger.Debug().Err(err).Int("index", i).Msg("Failed to decode JSON record")
			records = append(records, nil)
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}

// decodeMarkupRecords streams the document and decodes every item element that
// is a direct child of the root. A syntax error after at least one record was
// read truncates the result instead of failing the whole section.
func decodeMarkupRecords(payload []byte) ([]record, error) {
	logger := config.GetLogger()
	dec := newXMLDecoder(bytes.NewReader(payload))

	var records []record
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(records) == 0 {
				return nil, fmt.Errorf("decode markup document: %w", err)
			}
			logger.Warn().Err(err).Int("records", len(records)).Msg("Markup document truncated, keeping records read so far")
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 1 && itemElements[t.Name.Local] {
				var rec markupRecord
				if err := dec.DecodeElement(&rec, &t); err != nil {
					if len(records) == 0 {
						return nil, fmt.Errorf("decode markup record: %w", err)
					}
					logger.Warn().Err(err).Int("records", len(records)).Msg("Markup record unreadable, keeping records read so far")
					return records, nil
				}
				records = append(records, &rec)
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if depth != 0 && len(records) == 0 {
		return nil, errors.New("decode markup document: unexpected end of document")
	}
	return records, nil
}
