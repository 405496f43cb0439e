package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Schema is one recognized wire feed format. The normalizer tries schemas in
// a fixed declared order and only reports failure when every schema rejects
// the input.
type Schema interface {
	Name() string
	Parse(data []byte) (*Feed, error)
}

// entryTimeLayouts are the date-time formats accepted for the entry-log
// schema's updated element.
var entryTimeLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	time.RFC3339,
}

// wireAuthor is the author element shared by both wire schemas.
type wireAuthor struct {
	Name string `xml:"name"`
	URI  string `xml:"uri"`
}

// wireMedia is a media reference element. The repair pass rewrites the
// namespaced media:content / media:description names to their dashed form
// before parsing, so the wire structs address them that way.
type wireMedia struct {
	URL         string `xml:"url,attr"`
	MimeType    string `xml:"type,attr"`
	FileSize    string `xml:"fileSize,attr"`
	Medium      string `xml:"medium,attr"`
	Description string `xml:"media-description"`
}

func (m wireMedia) toAsset() MediaAsset {
	return MediaAsset{
		URL:         m.URL,
		Description: m.Description,
		MimeType:    m.MimeType,
		Medium:      m.Medium,
	}
}

// schemaA is the chronological-item feed format: a channel with a flat
// sequence of items, each carrying a required guid.
type schemaA struct{}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Link  string    `xml:"link"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	GUID           string      `xml:"guid"`
	Title          string      `xml:"title"`
	PlainTitle     string      `xml:"plainTitle"`
	Link           string      `xml:"link"`
	Description    string      `xml:"description"`
	Author         *wireAuthor `xml:"author"`
	PubDate        string      `xml:"pubDate"`
	CreateDate     string      `xml:"createDate"`
	UpdateDate     string      `xml:"updateDate"`
	Media          []wireMedia `xml:"media-content"`
	ContentEncoded string      `xml:"content-encoded"`
}

func (schemaA) Name() string { return "rss" }

func (schemaA) Parse(data []byte) (*Feed, error) {
	var doc rssDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(doc.Channel.Items))
	for i, raw := range doc.Channel.Items {
		if raw.GUID == "" {
			return nil, fmt.Errorf("item %d is missing a guid", i)
		}

		item := Item{
			GUID:        raw.GUID,
			Title:       raw.Title,
			PlainTitle:  raw.PlainTitle,
			Link:        raw.Link,
			Body:        raw.Description,
			RichBody:    raw.ContentEncoded,
			PublishedAt: raw.PubDate,
			CreatedAt:   raw.CreateDate,
			UpdatedAt:   raw.UpdateDate,
		}
		if raw.Author != nil {
			item.Author = &Author{Name: raw.Author.Name, URI: raw.Author.URI}
		}
		for _, m := range raw.Media {
			item.Media = append(item.Media, m.toAsset())
		}
		items = append(items, item)
	}

	return &Feed{
		Title: doc.Channel.Title,
		Link:  doc.Channel.Link,
		Items: items,
	}, nil
}

// schemaB is the entry-log feed format: a feed-level id/title/author with a
// sequence of entries. Parsed entries are converted into canonical items.
type schemaB struct{}

type entryLogDocument struct {
	XMLName  xml.Name        `xml:"feed"`
	ID       string          `xml:"id"`
	Title    string          `xml:"title"`
	Subtitle string          `xml:"subtitle"`
	Author   wireAuthor      `xml:"author"`
	Updated  string          `xml:"updated"`
	Entries  []entryLogEntry `xml:"entry"`
}

type entryLogEntry struct {
	ID      string       `xml:"id"`
	Title   string       `xml:"title"`
	Author  wireAuthor   `xml:"author"`
	Updated string       `xml:"updated"`
	Content string       `xml:"content"`
	Summary string       `xml:"summary"`
	Link    entryLogLink `xml:"link"`
	Media   []wireMedia  `xml:"media-content"`
}

type entryLogLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

func (schemaB) Name() string { return "atom" }

func (schemaB) Parse(data []byte) (*Feed, error) {
	var doc entryLogDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("feed is missing an id")
	}

	for i, entry := range doc.Entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("entry %d is missing an id", i)
		}
	}

	items := lo.Map(doc.Entries, func(entry entryLogEntry, _ int) Item {
		return entry.toItem()
	})

	return &Feed{
		Title: doc.Title,
		Link:  doc.Author.URI,
		Items: items,
	}, nil
}

func (e entryLogEntry) toItem() Item {
	// The entry's single updated time stands in for all three item
	// timestamps, reformatted to the chronological schema's wire text.
	wireTime := entryTimeToWire(e.Updated)

	item := Item{
		GUID:        e.ID,
		Title:       e.Title,
		PlainTitle:  e.Title,
		Link:        e.Link.Href,
		Body:        e.Summary,
		RichBody:    e.Content,
		Author:      &Author{Name: e.Author.Name, URI: e.Author.URI},
		PublishedAt: wireTime,
		CreatedAt:   wireTime,
		UpdatedAt:   wireTime,
	}
	for _, m := range e.Media {
		item.Media = append(item.Media, m.toAsset())
	}
	return item
}

func entryTimeToWire(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range entryTimeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.UTC().Format(WireTimeLayout)
		}
	}
	return ""
}
