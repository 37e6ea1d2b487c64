// Package cache keeps raw upstream documents (server identity and section
// payloads) so repeated spins over one library skip the network. Documents are
// addressed by server, credential fingerprint and path, so two users of the same
// server never share one.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Kind classifies a cached document by the upstream endpoint it came from.
type Kind string

const (
	KindIdentity Kind = "identity"
	KindSection  Kind = "section"
	KindOther    Kind = "other"
)

// Key addresses one upstream document.
type Key struct {
	Server      string // normalized base URL
	Fingerprint string // truncated SHA-256 of the token
	Path        string
}

// NewKey builds the key of path on server as seen with token. The token itself
// never appears in the key since keys may be written to Redis.
func NewKey(server, token, path string) Key {
	sum := sha256.Sum256([]byte(token))
	return Key{Server: server, Fingerprint: hex.EncodeToString(sum[:8]), Path: path}
}

func (k Key) String() string {
	return k.Server + "|" + k.Fingerprint + "|" + k.Path
}

// Kind reports which endpoint the key points at.
func (k Key) Kind() Kind {
	switch {
	case k.Path == "/":
		return KindIdentity
	case strings.HasPrefix(k.Path, "/library/sections/") && strings.HasSuffix(k.Path, "/all"):
		return KindSection
	default:
		return KindOther
	}
}

// parseKey reverses Key.String. Server addresses may contain '|' in theory, so
// the fingerprint and path are taken from the right.
func parseKey(s string) (Key, bool) {
	last := strings.LastIndexByte(s, '|')
	if last < 0 {
		return Key{}, false
	}
	first := strings.LastIndexByte(s[:last], '|')
	if first < 0 {
		return Key{}, false
	}
	return Key{Server: s[:first], Fingerprint: s[first+1 : last], Path: s[last+1:]}, true
}

// Document is one cached upstream body and the time it was fetched.
type Document struct {
	Body      []byte
	FetchedAt time.Time
}

// Age is how long ago the document was fetched, relative to now.
func (d Document) Age(now time.Time) time.Duration {
	if d.FetchedAt.IsZero() || now.Before(d.FetchedAt) {
		return 0
	}
	return now.Sub(d.FetchedAt)
}

// Cache stores upstream documents with LRU eviction and a fixed time to live.
// Implementations are safe for concurrent use; failures of remote backends are
// logged and surface as misses.
type Cache interface {
	// Get returns the document stored under key and refreshes its LRU position.
	Get(key Key) (Document, bool)

	// Put stores body under key, stamped with the current time.
	Put(key Key, body []byte)

	// Forget drops the document under key. Forgetting an absent key is a no-op.
	Forget(key Key)

	// Len returns the number of live documents.
	Len() int

	// Close releases backend connections.
	Close() error
}
