// Package media normalizes the submission media field.
//
// A stored media reference is absent, a single URL, or a JSON-encoded list of
// URLs. Decode turns any of those into an ordered list of classified items and
// EncodeURLs writes the canonical form back. Nothing in this package returns an
// error: malformed input falls back to a single URL or an empty list.
package media

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// Kind classifies a media URL by its extension
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindUnknown Kind = "unknown"
)

// Item is one decoded media reference
type Item struct {
	URL  string `json:"url"`
	Kind Kind   `json:"kind"`
}

var (
	imageExtensions = map[string]struct{}{
		"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "svg": {}, "bmp": {}, "ico": {},
	}
	videoExtensions = map[string]struct{}{
		"mp4": {}, "webm": {}, "mov": {}, "avi": {}, "mkv": {}, "wmv": {}, "m4v": {}, "ogv": {},
	}
)

// Decode accepts nil, string, *string, []string or []any (JSONB) and returns
// the canonical item list. Unsupported types decode to an empty list.
func Decode(raw any) []Item {
	switch v := raw.(type) {
	case nil:
		return []Item{}
	case *string:
		if v == nil {
			return []Item{}
		}
		return decodeString(*v)
	case string:
		return decodeString(v)
	case []string:
		return fromURLs(v)
	case []any:
		urls := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				urls = append(urls, s)
			}
		}
		return fromURLs(urls)
	case json.RawMessage:
		return decodeString(string(v))
	default:
		return []Item{}
	}
}

// DecodeURLs is Decode without classification
func DecodeURLs(raw any) []string {
	return URLs(Decode(raw))
}

func decodeString(s string) []Item {
	if strings.TrimSpace(s) == "" {
		return []Item{}
	}
	if strings.HasPrefix(s, "[") {
		var urls []string
		if err := json.Unmarshal([]byte(s), &urls); err == nil {
			return fromURLs(urls)
		}
	}
	return fromURLs([]string{s})
}

// fromURLs builds items from decoded URLs. Invalid UTF-8 is replaced up front
// so the JSON encoder has nothing left to rewrite.
func fromURLs(urls []string) []Item {
	items := make([]Item, 0, len(urls))
	for _, u := range urls {
		u = strings.ToValidUTF8(u, "\uFFFD")
		items = append(items, Item{URL: u, Kind: Classify(u)})
	}
	return items
}

// Encode writes the canonical JSON list. ok is false for an empty list,
// which is stored as absent.
func Encode(items []Item) (string, bool) {
	return encode(URLs(items))
}

// EncodeURLs is Encode for plain URLs, returning nil for an empty list.
func EncodeURLs(urls []string) *string {
	s, ok := encode(urls)
	if !ok {
		return nil
	}
	return &s
}

func encode(urls []string) (string, bool) {
	if len(urls) == 0 {
		return "", false
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(urls); err != nil {
		return "", false
	}
	return strings.TrimRight(buf.String(), "\n"), true
}

// URLs projects items back to their URLs in order
func URLs(items []Item) []string {
	urls := make([]string, 0, len(items))
	for _, it := range items {
		urls = append(urls, it.URL)
	}
	return urls
}

// Extension returns the lower-cased text after the last dot, ignoring any
// query string or fragment.
func Extension(u string) string {
	clean := u
	if i := strings.IndexByte(clean, '?'); i >= 0 {
		clean = clean[:i]
	}
	if i := strings.IndexByte(clean, '#'); i >= 0 {
		clean = clean[:i]
	}
	i := strings.LastIndexByte(clean, '.')
	if i < 0 {
		return strings.ToLower(clean)
	}
	return strings.ToLower(clean[i+1:])
}

// Classify reports the media kind of a URL
func Classify(u string) Kind {
	ext := Extension(u)
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	if _, ok := videoExtensions[ext]; ok {
		return KindVideo
	}
	// opaque storage URLs often carry only the word in their path
	if strings.Contains(u, "video") {
		return KindVideo
	}
	return KindUnknown
}

// IsValidURL accepts absolute http and https URLs only
func IsValidURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func FilterValid(urls []string) []string {
	valid := make([]string, 0, len(urls))
	for _, u := range urls {
		if IsValidURL(u) {
			valid = append(valid, u)
		}
	}
	return valid
}

// Counts tallies images and videos; unknown items are not counted
type Counts struct {
	Images int `json:"images"`
	Videos int `json:"videos"`
}

func CountKinds(urls []string) Counts {
	var c Counts
	for _, u := range urls {
		switch Classify(u) {
		case KindImage:
			c.Images++
		case KindVideo:
			c.Videos++
		}
	}
	return c
}

// Rewrite removes the listed URLs from a stored reference, appends the added
// ones and returns the new canonical value.
func Rewrite(stored *string, removed, added []string) *string {
	drop := make(map[string]struct{}, len(removed))
	for _, r := range removed {
		drop[r] = struct{}{}
	}
	kept := make([]string, 0)
	for _, u := range DecodeURLs(stored) {
		if _, ok := drop[u]; !ok {
			kept = append(kept, u)
		}
	}
	return EncodeURLs(append(kept, added...))
}
