// Package reconcile diffs a desired resource graph against live cloud
// state and applies the resulting changeset: creates and updates walk
// the dependency tiers forward, deletes walk them in reverse, and
// independent resources within a tier are reconciled in parallel.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bgplab-net/bgplab/pkg/graph"
)

// ChangeType classifies a single change.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
)

// Change represents one create/update/delete against the provider.
type Change struct {
	Type ChangeType        `json:"type"`
	Ref  graph.Ref         `json:"ref"`
	Old  map[string]string `json:"old,omitempty"`
	New  map[string]string `json:"new,omitempty"`
}

// ChangeSet is the ordered plan for one reconcile run.
type ChangeSet struct {
	Lab       string    `json:"lab"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Changes   []Change  `json:"changes"`
	// Notes carry informational findings surfaced to the operator
	// alongside the plan (e.g. the breadth of the allow-list rule).
	Notes []string `json:"notes,omitempty"`
}

// NewChangeSet creates an empty changeset with a fresh run ID.
func NewChangeSet(lab string) *ChangeSet {
	return &ChangeSet{
		Lab:       lab,
		RunID:     uuid.NewString(),
		Timestamp: time.Now(),
	}
}

// Add appends a change.
func (cs *ChangeSet) Add(t ChangeType, ref graph.Ref, old, new map[string]string) {
	cs.Changes = append(cs.Changes, Change{Type: t, Ref: ref, Old: old, New: new})
}

// IsEmpty returns true if the plan contains no changes.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Changes) == 0
}

// Counts returns the number of adds, modifies, and deletes.
func (cs *ChangeSet) Counts() (adds, modifies, deletes int) {
	for _, c := range cs.Changes {
		switch c.Type {
		case ChangeAdd:
			adds++
		case ChangeModify:
			modifies++
		case ChangeDelete:
			deletes++
		}
	}
	return adds, modifies, deletes
}

// String returns a human-readable rendering of the plan.
func (cs *ChangeSet) String() string {
	if cs.IsEmpty() {
		return "No changes"
	}

	var sb strings.Builder
	for _, c := range cs.Changes {
		tag := ""
		switch c.Type {
		case ChangeAdd:
			tag = "[ADD]"
		case ChangeModify:
			tag = "[MOD]"
		case ChangeDelete:
			tag = "[DEL]"
		}
		sb.WriteString(fmt.Sprintf("  %s %s", tag, c.Ref))
		if c.Type == ChangeModify {
			sb.WriteString(fmt.Sprintf(" (%d fields)", len(changedFields(c.Old, c.New))))
		}
		sb.WriteString("\n")
	}
	for _, note := range cs.Notes {
		sb.WriteString("  note: " + note + "\n")
	}
	return sb.String()
}

// changedFields lists the attribute names that differ between old and new.
func changedFields(old, new map[string]string) []string {
	var fields []string
	for k, v := range new {
		if old[k] != v {
			fields = append(fields, k)
		}
	}
	for k := range old {
		if _, ok := new[k]; !ok {
			fields = append(fields, k)
		}
	}
	return fields
}

// attrsEqual reports whether two attribute maps are identical.
func attrsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
