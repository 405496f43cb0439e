package feed

import (
	"fmt"
	"strings"
	"time"
)

// WireTimeLayout is the date-time text format used by the chronological-item
// wire schema, e.g. "Mon, 02 Jan 2006 15:04:05 +0000".
const WireTimeLayout = "Mon, 02 Jan 2006 15:04:05 -0700"

// Author identifies the producer of an item, either as parsed from the
// source feed or filled in from the owning source during synthesis.
type Author struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// MediaAsset is a single media reference owned by an item. URL is the only
// field rewritten after parsing (by the media relocator).
type MediaAsset struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType"`
	Medium      string `json:"medium"`
}

// HTML renders the asset as an HTML fragment suitable for embedding in an
// item's rich body. Image assets render as an img tag, video assets as a
// video tag wrapping the description, anything else as the bare description.
func (m MediaAsset) HTML() string {
	switch {
	case strings.HasPrefix(m.MimeType, "image"):
		return fmt.Sprintf(`<img src="%s" alt="%s" />`, m.URL, m.Description)
	case strings.HasPrefix(m.MimeType, "video"):
		return fmt.Sprintf(`<video src="%s" type="%s" controls>%s</video>`, m.URL, m.MimeType, m.Description)
	default:
		return m.Description
	}
}

// Item is the canonical unit of content. GUID uniquely identifies an item
// within its source feed; cross-source collisions are not deduplicated.
// Empty string means the field was absent from the source.
type Item struct {
	GUID        string       `json:"guid"`
	Title       string       `json:"title,omitempty"`
	PlainTitle  string       `json:"plainTitle,omitempty"`
	Link        string       `json:"link,omitempty"`
	Body        string       `json:"body,omitempty"`
	RichBody    string       `json:"richBody,omitempty"`
	Author      *Author      `json:"author,omitempty"`
	PublishedAt string       `json:"publishedAt,omitempty"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
	Media       []MediaAsset `json:"media,omitempty"`
}

// Clone returns a deep copy of the item so synthesis passes can mutate it
// without touching stored state.
func (it Item) Clone() Item {
	clone := it
	if it.Author != nil {
		author := *it.Author
		clone.Author = &author
	}
	if it.Media != nil {
		clone.Media = make([]MediaAsset, len(it.Media))
		copy(clone.Media, it.Media)
	}
	return clone
}

// PublishedTimestamp returns the item's publish time as a unix timestamp.
// The second return value is false when the field is absent or does not
// parse as wire-format time.
func (it Item) PublishedTimestamp() (int64, bool) {
	return parseWireTime(it.PublishedAt)
}

// CreatedTimestamp is PublishedTimestamp for the creation time field.
func (it Item) CreatedTimestamp() (int64, bool) {
	return parseWireTime(it.CreatedAt)
}

// UpdatedTimestamp is PublishedTimestamp for the update time field.
func (it Item) UpdatedTimestamp() (int64, bool) {
	return parseWireTime(it.UpdatedAt)
}

// parseWireTime parses a wire-format date-time string. Some producers emit
// "GMT" instead of a numeric offset, which the layout rejects.
func parseWireTime(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	t, err := time.Parse(WireTimeLayout, strings.Replace(s, "GMT", "+0000", 1))
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

// Feed is the canonical in-memory representation produced by the format
// normalizer, regardless of which wire schema the source used.
type Feed struct {
	Title string
	Link  string
	Items []Item
}
