package parser

import (
	"bytes"
	"errors"
)

// payloadFormat is the structural format of an upstream document.
type payloadFormat int

const (
	formatUnknown payloadFormat = iota
	formatMarkup
	formatJSON
)

func (f payloadFormat) String() string {
	switch f {
	case formatMarkup:
		return "markup"
	case formatJSON:
		return "json"
	default:
		return "unknown"
	}
}

var (
	errEmptyPayload   = errors.New("empty payload")
	errUnknownPayload = errors.New("payload is neither a markup document nor a JSON envelope")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sniffFormat looks at the first significant byte of the payload and returns the
// payload with any byte order mark and leading whitespace removed. The declared
// content type is never consulted: upstream servers are known to lie about it.
func sniffFormat(payload []byte) (payloadFormat, []byte, error) {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(payload, utf8BOM), " \t\r\n")
	if len(trimmed) == 0 {
		return formatUnknown, nil, errEmptyPayload
	}
	switch trimmed[0] {
	case '{':
		return formatJSON, trimmed, nil
	case '<':
		return formatMarkup, trimmed, nil
	default:
		return formatUnknown, nil, errUnknownPayload
	}
}
