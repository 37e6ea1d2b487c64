package parser

import (
	"bytes"
	"testing"
)

type charsetDoc struct {
	Title string `xml:"title,attr"`
}

func TestNewXMLDecoder_Encodings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "utf-8 passes through",
			input:    []byte(`<?xml version="1.0" encoding="UTF-8"?><Doc title="Hello ☺"/>`),
			expected: "Hello ☺",
		},
		{
			name:     "no declaration defaults to utf-8",
			input:    []byte(`<Doc title="Plain"/>`),
			expected: "Plain",
		},
		{
			name:     "iso-8859-1",
			input:    []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><Doc title="Caf` + string([]byte{0xE9}) + `"/>`),
			expected: "Café",
		},
		{
			// 0x99 is only defined in windows-1252
			name:     "windows-1252",
			input:    []byte(`<?xml version="1.0" encoding="windows-1252"?><Doc title="Test` + string([]byte{0x99}) + `"/>`),
			expected: "Test™",
		},
		{
			name:     "html named entities",
			input:    []byte(`<Doc title="Am&eacute;lie &amp; L&eacute;on"/>`),
			expected: "Amélie & Léon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var doc charsetDoc
			if err := newXMLDecoder(bytes.NewReader(tt.input)).Decode(&doc); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if doc.Title != tt.expected {
				t.Errorf("Title = %q, want %q", doc.Title, tt.expected)
			}
		})
	}
}

func TestNewXMLDecoder_UnknownEncoding(t *testing.T) {
	t.Parallel()
	input := []byte(`<?xml version="1.0" encoding="x-not-a-charset"?><Doc title="x"/>`)
	var doc charsetDoc
	if err := newXMLDecoder(bytes.NewReader(input)).Decode(&doc); err == nil {
		t.Error("Expected an error for an unknown encoding label")
	}
}

func TestSniffFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    []byte
		expected payloadFormat
		wantErr  error
	}{
		{"json", []byte(`{"a":1}`), formatJSON, nil},
		{"markup", []byte(`<a/>`), formatMarkup, nil},
		{"markup with prolog", []byte(`<?xml version="1.0"?><a/>`), formatMarkup, nil},
		{"bom and whitespace", append([]byte{0xEF, 0xBB, 0xBF}, []byte("\r\n {}")...), formatJSON, nil},
		{"empty", nil, formatUnknown, errEmptyPayload},
		{"html error page text", []byte("Bad Gateway"), formatUnknown, errUnknownPayload},
		{"json array", []byte(`[1,2]`), formatUnknown, errUnknownPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			format, trimmed, err := sniffFormat(tt.input)
			if err != tt.wantErr {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if format != tt.expected {
				t.Errorf("format = %s, want %s", format, tt.expected)
			}
			if err == nil && trimmed[0] != '{' && trimmed[0] != '<' {
				t.Errorf("expected trimmed payload to start at the first significant byte, got %q", trimmed)
			}
		})
	}
}
