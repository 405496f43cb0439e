package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"feedjunction/app/feed"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	s := New()
	s.OutputTitle = "Combined"
	s.OutputLink = "https://example.org/feed"
	s.MaxEntriesPublished = 25
	s.Ingest("https://example.org/feed.xml", &feed.Feed{
		Title: "Example Blog",
		Link:  "https://example.org/blog",
		Items: []feed.Item{
			{
				GUID:        "a",
				Title:       "First",
				Body:        "first body",
				RichBody:    "<p>first</p>",
				Author:      &feed.Author{Name: "Emma", URI: "https://example.org/@emma"},
				PublishedAt: "Mon, 02 Jan 2023 15:04:05 +0000",
				Media: []feed.MediaAsset{
					{URL: "https://example.org/pic.png", Description: "a picture", MimeType: "image/png", Medium: "image"},
				},
			},
		},
	})
	s.SeedSource("https://example.org/feed.xml", "scripts/fixup.sh", false, true)

	if err := s.Save(path); err != nil {
		t.Fatalf("Expected save to succeed, got: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Expected load to succeed, got: %v", err)
	}

	if !reflect.DeepEqual(s.Sources, loaded.Sources) {
		t.Errorf("Sources should survive the round trip:\n%+v\nvs\n%+v", s.Sources, loaded.Sources)
	}
	if loaded.OutputTitle != s.OutputTitle || loaded.OutputLink != s.OutputLink {
		t.Errorf("Output title and link should survive, got %+v", loaded)
	}
	if loaded.MaxEntriesPublished != 25 {
		t.Errorf("Policy fields should survive, got %d", loaded.MaxEntriesPublished)
	}
}

func TestLoadMissingDocumentYieldsDefaults(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Missing document must not be an error, got: %v", err)
	}

	if loaded.Sources == nil || len(loaded.Sources) != 0 {
		t.Errorf("Fresh store should have an empty sources map, got %+v", loaded.Sources)
	}
	if !loaded.IncludeDescriptionAsTitleIfNoneGiven || loaded.DescriptionTitleWordCount != 10 {
		t.Errorf("Fresh store should carry default policy, got %+v", loaded)
	}
	if loaded.TitleEllipsis != "..." || loaded.MaxEntriesPublished != -1 {
		t.Errorf("Fresh store should carry default policy, got %+v", loaded)
	}
}

func TestLoadUndecodableDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected an error for an undecodable document")
	}

	var persistenceErr *PersistenceError
	if !errors.As(err, &persistenceErr) {
		t.Fatalf("Expected *PersistenceError, got %T", err)
	}
	if persistenceErr.Op != "decode" {
		t.Errorf("Expected decode failure, got %q", persistenceErr.Op)
	}
}

func TestSaveFailureIsSurfaced(t *testing.T) {
	err := New().Save(filepath.Join(t.TempDir(), "no", "such", "dir", "db.json"))
	if err == nil {
		t.Fatal("Expected an error when the target directory does not exist")
	}
	if !strings.Contains(err.Error(), "failed to write") {
		t.Errorf("Expected a write failure, got: %v", err)
	}
}

func TestPersistedFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	s := New()
	s.Ingest("https://example.org/feed.xml", &feed.Feed{Title: "Example", Items: []feed.Item{{GUID: "a"}}})
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	document := string(data)
	for _, field := range []string{
		`"sources"`, `"sourceTitle"`, `"sourceLink"`, `"transformCommand"`,
		`"retainAllEntries"`, `"items"`, `"guid"`, `"outputTitle"`, `"outputLink"`,
		`"includeDescriptionAsTitleIfNoneGiven"`, `"descriptionTitleWordCount"`,
		`"titleEllipsis"`, `"populateContentEncoded"`, `"addMediaToContentEncoded"`,
		`"maxEntriesPublished"`, `"overrideItemAuthor"`,
	} {
		if !strings.Contains(document, field) {
			t.Errorf("Persisted document should contain field %s", field)
		}
	}
}
