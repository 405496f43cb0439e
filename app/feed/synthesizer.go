package feed

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Policy is the store-level output configuration applied during synthesis.
type Policy struct {
	OutputTitle                          string
	OutputLink                           string
	OverrideItemAuthor                   bool
	IncludeDescriptionAsTitleIfNoneGiven bool
	DescriptionTitleWordCount            int
	TitleEllipsis                        string
	PopulateContentEncoded               bool
	AddMediaToContentEncoded             bool
	MaxEntriesPublished                  int
}

// SourceItems is one source's stored items together with the source's
// current title and link, used to fill missing item fields.
type SourceItems struct {
	Title string
	Link  string
	Items []Item
}

var markupTagRe = regexp.MustCompile(`<[^>]*>`)

// Synthesizer merges every source's stored items into one timeline, fills in
// missing fields per policy, sorts and truncates. Stored items are never
// mutated; every item is deep-copied before synthesis.
type Synthesizer struct{}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

func (s *Synthesizer) Run(policy Policy, sources []SourceItems) *Feed {
	items := make([]Item, 0)
	for _, source := range sources {
		for _, stored := range source.Items {
			items = append(items, s.synthesizeItem(policy, source, stored))
		}
	}

	// Missing timestamps sort as older than any timestamped item; equal
	// timestamps keep their input relative order.
	sort.SliceStable(items, func(i, j int) bool {
		ti, iok := items[i].PublishedTimestamp()
		tj, jok := items[j].PublishedTimestamp()
		if iok != jok {
			return iok
		}
		return iok && ti > tj
	})

	if policy.MaxEntriesPublished > 0 && len(items) > policy.MaxEntriesPublished {
		items = items[:policy.MaxEntriesPublished]
	}

	return &Feed{
		Title: policy.OutputTitle,
		Link:  policy.OutputLink,
		Items: items,
	}
}

func (s *Synthesizer) synthesizeItem(policy Policy, source SourceItems, stored Item) Item {
	item := stored.Clone()

	if item.Author == nil || policy.OverrideItemAuthor {
		item.Author = &Author{Name: source.Title, URI: source.Link}
	}

	if item.Title == "" && policy.IncludeDescriptionAsTitleIfNoneGiven && item.Body != "" {
		item.Title = deriveTitle(item.Body, policy.DescriptionTitleWordCount, policy.TitleEllipsis)
	}

	if item.RichBody == "" && policy.PopulateContentEncoded {
		item.RichBody = item.Body
	}

	if item.RichBody != "" && policy.AddMediaToContentEncoded {
		fragments := lo.FilterMap(item.Media, func(m MediaAsset, _ int) (string, bool) {
			return m.HTML(), !strings.Contains(item.RichBody, m.URL)
		})
		item.RichBody = item.RichBody + "<br>" + strings.Join(fragments, " ")
	}

	return item
}

// deriveTitle builds a title from a short plain description: markup tags are
// stripped, the apostrophe entity unescaped, and the text truncated to the
// configured word count with an ellipsis appended.
func deriveTitle(body string, wordCount int, ellipsis string) string {
	text := strings.ReplaceAll(markupTagRe.ReplaceAllString(body, ""), "&#39;", "'")
	words := strings.Fields(text)
	if len(words) > wordCount {
		return strings.Join(words[:wordCount], " ") + ellipsis
	}
	return text
}
