package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
)

// Generator serializes a canonical feed to the chronological-item wire
// schema. Empty fields are omitted entirely rather than serialized as empty
// elements; a feed with zero items is still a valid document.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(feed *Feed) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:webfeeds="http://webfeeds.org/rss/1.0" xmlns:media="http://search.yahoo.com/mrss/" xmlns:content="http://purl.org/rss/1.0/modules/content/">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", feed.Title, 4)
	g.writeElement(&buf, "link", feed.Link, 4)

	for _, item := range feed.Items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "guid", item.GUID, 6)
	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "plainTitle", item.PlainTitle, 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", item.Body, 6)

	if item.Author != nil {
		buf.WriteString("      <author>\n")
		g.writeElement(buf, "name", item.Author.Name, 8)
		g.writeElement(buf, "uri", item.Author.URI, 8)
		buf.WriteString("      </author>\n")
	}

	g.writeElement(buf, "pubDate", item.PublishedAt, 6)
	g.writeElement(buf, "createDate", item.CreatedAt, 6)
	g.writeElement(buf, "updateDate", item.UpdatedAt, 6)

	for _, media := range item.Media {
		g.writeMedia(buf, media)
	}

	if item.RichBody != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(item.RichBody)
		buf.WriteString("]]></content:encoded>\n")
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeMedia(buf *bytes.Buffer, media MediaAsset) {
	buf.WriteString(fmt.Sprintf(`      <media:content url="%s" type="%s" medium="%s"`,
		html.EscapeString(media.URL),
		html.EscapeString(media.MimeType),
		html.EscapeString(media.Medium)))

	if media.Description == "" {
		buf.WriteString(" />\n")
		return
	}

	buf.WriteString(">\n")
	g.writeElement(buf, "media:description", media.Description, 8)
	buf.WriteString("      </media:content>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
