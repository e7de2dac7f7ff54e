package route

import "fmt"

// Source records how a route came to exist.
type Source string

const (
	// SourcePlanned is a route drawn in the planner.
	SourcePlanned Source = "planned"
	// SourceRecorded is a route captured from live GPS.
	SourceRecorded Source = "recorded"
	// SourceImported is a route loaded from an uploaded GPX file.
	SourceImported Source = "imported"
)

// IsValid returns true if the source is recognized.
func (s Source) IsValid() bool {
	switch s {
	case SourcePlanned, SourceRecorded, SourceImported:
		return true
	}
	return false
}

// String returns the string representation of the source.
func (s Source) String() string {
	return string(s)
}

// ParseSource converts a string to a Source, returning an error if invalid.
func ParseSource(s string) (Source, error) {
	source := Source(s)
	if !source.IsValid() {
		return "", fmt.Errorf("invalid route source: %s", s)
	}
	return source, nil
}
