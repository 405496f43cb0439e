package store

import (
	"sort"
	"sync"

	"feedjunction/app/feed"
)

// SourceState is one ingested source's last-known canonical state plus its
// per-source options. Field names match the persisted document.
type SourceState struct {
	Items                    []feed.Item `json:"items"`
	SourceTitle              string      `json:"sourceTitle"`
	SourceLink               string      `json:"sourceLink"`
	TransformCommand         string      `json:"transformCommand"`
	AllowRawOnTransformError bool        `json:"allowRawOnTransformError,omitempty"`
	RetainAllEntries         bool        `json:"retainAllEntries"`
}

// Store is the whole persisted document: every source's state keyed by its
// fetch URL plus the output policy. A single instance is loaded at process
// start, passed down the call chain, and saved at defined checkpoints; it is
// not safe for more than one concurrent writer process.
type Store struct {
	mu sync.RWMutex

	Sources                              map[string]*SourceState `json:"sources"`
	OutputTitle                          string                  `json:"outputTitle"`
	OutputLink                           string                  `json:"outputLink"`
	IncludeDescriptionAsTitleIfNoneGiven bool                    `json:"includeDescriptionAsTitleIfNoneGiven"`
	DescriptionTitleWordCount            int                     `json:"descriptionTitleWordCount"`
	TitleEllipsis                        string                  `json:"titleEllipsis"`
	PopulateContentEncoded               bool                    `json:"populateContentEncoded"`
	AddMediaToContentEncoded             bool                    `json:"addMediaToContentEncoded"`
	MaxEntriesPublished                  int                     `json:"maxEntriesPublished"`
	OverrideItemAuthor                   bool                    `json:"overrideItemAuthor"`
}

// New returns a fresh store with default output policy. A negative
// MaxEntriesPublished means unbounded.
func New() *Store {
	return &Store{
		Sources:                              make(map[string]*SourceState),
		IncludeDescriptionAsTitleIfNoneGiven: true,
		DescriptionTitleWordCount:            10,
		TitleEllipsis:                        "...",
		PopulateContentEncoded:               true,
		AddMediaToContentEncoded:             true,
		MaxEntriesPublished:                  -1,
	}
}

// Ingest reconciles a freshly-parsed canonical feed against the stored state
// for sourceURL. A first-seen source gets a new state holding the feed
// as-is; an existing source is merged item-by-item keyed by guid. The stored
// source title and link always track the incoming feed, since a source may
// rename itself.
func (s *Store) Ingest(sourceURL string, canonical *feed.Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.Sources[sourceURL]
	if !ok {
		s.Sources[sourceURL] = &SourceState{
			Items:            canonical.Items,
			SourceTitle:      canonical.Title,
			SourceLink:       canonical.Link,
			RetainAllEntries: true,
		}
		return
	}

	for _, incoming := range canonical.Items {
		found := false
		for i := range state.Items {
			if state.Items[i].GUID == incoming.GUID {
				state.Items[i] = mergeItem(state.Items[i], incoming)
				found = true
			}
		}
		if !found {
			state.Items = append(state.Items, incoming)
		}
	}

	if !state.RetainAllEntries {
		state.Items = pruneAbsent(state.Items, canonical.Items)
	}

	state.SourceTitle = canonical.Title
	state.SourceLink = canonical.Link
}

// mergeItem replaces a stored item's content fields with the incoming
// item's. Identity (guid), link, and the parsed author survive from the
// stored item; position in the sequence is the caller's concern.
func mergeItem(stored, incoming feed.Item) feed.Item {
	merged := incoming
	merged.GUID = stored.GUID
	merged.Link = stored.Link
	merged.Author = stored.Author
	return merged
}

// pruneAbsent drops stored items whose guid no longer appears in the
// incoming feed. Only runs for sources that opted out of full retention.
func pruneAbsent(stored, incoming []feed.Item) []feed.Item {
	present := make(map[string]bool, len(incoming))
	for _, item := range incoming {
		present[item.GUID] = true
	}

	kept := stored[:0]
	for _, item := range stored {
		if present[item.GUID] {
			kept = append(kept, item)
		}
	}
	return kept
}

// SeedSource registers per-source options ahead of the first ingest, or
// updates them for a known source. Stored items are untouched.
func (s *Store) SeedSource(sourceURL, transformCommand string, allowRawOnTransformError, retainAllEntries bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.Sources[sourceURL]
	if !ok {
		state = &SourceState{}
		s.Sources[sourceURL] = state
	}
	state.TransformCommand = transformCommand
	state.AllowRawOnTransformError = allowRawOnTransformError
	state.RetainAllEntries = retainAllEntries
}

// TransformOptions returns the transform hook settings for a source.
func (s *Store) TransformOptions(sourceURL string) (command string, allowRawOnError bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.Sources[sourceURL]
	if !ok {
		return "", false
	}
	return state.TransformCommand, state.AllowRawOnTransformError
}

// Policy returns the store's output policy in the form the synthesizer
// consumes.
func (s *Store) Policy() feed.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return feed.Policy{
		OutputTitle:                          s.OutputTitle,
		OutputLink:                           s.OutputLink,
		OverrideItemAuthor:                   s.OverrideItemAuthor,
		IncludeDescriptionAsTitleIfNoneGiven: s.IncludeDescriptionAsTitleIfNoneGiven,
		DescriptionTitleWordCount:            s.DescriptionTitleWordCount,
		TitleEllipsis:                        s.TitleEllipsis,
		PopulateContentEncoded:               s.PopulateContentEncoded,
		AddMediaToContentEncoded:             s.AddMediaToContentEncoded,
		MaxEntriesPublished:                  s.MaxEntriesPublished,
	}
}

// SourceItems returns every source's items grouped with the source's title
// and link, ordered by source URL so synthesis output is stable across runs.
func (s *Store) SourceItems() []feed.SourceItems {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make([]string, 0, len(s.Sources))
	for url := range s.Sources {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	grouped := make([]feed.SourceItems, 0, len(urls))
	for _, url := range urls {
		state := s.Sources[url]
		grouped = append(grouped, feed.SourceItems{
			Title: state.SourceTitle,
			Link:  state.SourceLink,
			Items: state.Items,
		})
	}
	return grouped
}
