package feed

import (
	"fmt"
	"strings"
)

// SchemaError is one schema variant's parse failure.
type SchemaError struct {
	Schema string
	Err    error
}

// FormatError reports that no recognized schema accepted the input. It
// carries every underlying parse failure so the operator can see why each
// schema rejected the feed.
type FormatError struct {
	Causes []SchemaError
}

func (e *FormatError) Error() string {
	parts := make([]string, 0, len(e.Causes))
	for _, cause := range e.Causes {
		parts = append(parts, fmt.Sprintf("%s: %v", cause.Schema, cause.Err))
	}
	return "no matching format found for the feed: " + strings.Join(parts, "; ")
}

func (e *FormatError) Unwrap() []error {
	errs := make([]error, 0, len(e.Causes))
	for _, cause := range e.Causes {
		errs = append(errs, cause.Err)
	}
	return errs
}

// Normalizer repairs vendor-specific markup irregularities and parses raw
// feed text into the canonical representation, trying each recognized schema
// in declared order. Fallback is by attempt rather than content sniffing, so
// the wide variance of real feeds is tolerated without a registry of
// producer quirks.
type Normalizer struct {
	schemas []Schema
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		schemas: []Schema{schemaA{}, schemaB{}},
	}
}

// Run normalizes raw feed text into a canonical feed. When every schema
// rejects the input a *FormatError carrying all parse failures is returned;
// a third format is never guessed.
func (n *Normalizer) Run(raw string) (*Feed, error) {
	repaired := Repair(raw)

	formatErr := &FormatError{}
	for _, schema := range n.schemas {
		parsed, err := schema.Parse([]byte(repaired))
		if err == nil {
			return parsed, nil
		}
		formatErr.Causes = append(formatErr.Causes, SchemaError{Schema: schema.Name(), Err: err})
	}

	return nil, formatErr
}
