package parser

import (
	"encoding/xml"
	"io"

	"golang.org/x/net/html/charset"
)

// newXMLDecoder returns a decoder that honours the encoding declared in the XML
// prolog, converting non UTF-8 payloads (e.g. ISO-8859-1) to UTF-8 on the fly.
// Titles copied from web sources sometimes carry HTML named entities (&eacute;),
// which are resolved instead of failing the record.
func newXMLDecoder(body io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(body)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity
	return dec
}
