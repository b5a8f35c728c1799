package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Row is a persisted line row keyed by its line Guid.
type Row interface {
	LineGuid() string
}

// GuidSet is the identifier cache of already imported line Guids.
// Not safe for concurrent use.
type GuidSet struct {
	ids map[string]struct{}
}

// NewGuidSet returns a set holding the given identifiers.
func NewGuidSet(ids ...string) *GuidSet {
	s := &GuidSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id into the set.
func (s *GuidSet) Add(id string) {
	s.ids[NormalizeGuid(id)] = struct{}{}
}

// Contains reports whether id is in the set.
func (s *GuidSet) Contains(id string) bool {
	_, ok := s.ids[NormalizeGuid(id)]
	return ok
}

// Len returns the number of identifiers held.
func (s *GuidSet) Len() int {
	return len(s.ids)
}

// NormalizeGuid maps equivalent spellings of the same identifier to one key.
// SQL Server returns uniqueidentifier values upper-cased while the API sends
// them lower-cased, so UUIDs are compared in canonical form.
func NormalizeGuid(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return strings.ToLower(id)
}
