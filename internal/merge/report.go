package merge

import (
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/google/uuid"
)

// RecordRef names one persisted record.
type RecordRef struct {
	Table string    `json:"table"`
	ID    uuid.UUID `json:"id"`
}

// Entry is the outcome for one attribute or association.
type Entry struct {
	Remained  []RecordRef `json:"remained,omitempty"`
	Destroyed []RecordRef `json:"destroyed,omitempty"`
	Original  *RecordRef  `json:"original,omitempty"`
	Value     any         `json:"value,omitempty"`
}

// Warning is a recovered failure recorded during the merge.
type Warning struct {
	Key     string    `json:"key"`
	Record  RecordRef `json:"record"`
	Message string    `json:"message"`
}

// Report describes a merge run. Destroyed is only populated once a commit ran.
type Report struct {
	Kind      domain.OwnerKind  `json:"kind"`
	Self      domain.OwnerRef   `json:"self"`
	Other     domain.OwnerRef   `json:"other"`
	Committed bool              `json:"committed"`
	Entries   map[string]*Entry `json:"entries"`
	Destroyed []RecordRef       `json:"destroyed,omitempty"`
	Warnings  []Warning         `json:"warnings,omitempty"`
}

func newReport(self, other domain.OwnerRef) *Report {
	return &Report{
		Kind:    self.Kind,
		Self:    self,
		Other:   other,
		Entries: map[string]*Entry{},
	}
}

// Entry returns the entry for key, creating it when absent.
func (r *Report) Entry(key string) *Entry {
	entry, ok := r.Entries[key]
	if !ok {
		entry = &Entry{}
		r.Entries[key] = entry
	}
	return entry
}

// Remains reports whether ref is listed as remained under any entry.
func (r *Report) Remains(ref RecordRef) bool {
	for _, entry := range r.Entries {
		for _, remained := range entry.Remained {
			if remained == ref {
				return true
			}
		}
	}
	return false
}

func (r *Report) warn(key string, ref RecordRef, message string) {
	r.Warnings = append(r.Warnings, Warning{Key: key, Record: ref, Message: message})
}
