// Package snapshot maintains an immutable, atomically-swapped view of all
// enabled comp rules with their extracted facts. Downstream collaborators
// (the marketing-copy generator, PDF renderer) poll the snapshot with the
// ETag or subscribe to SSE updates instead of re-parsing rule criteria
// themselves.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"comprules/internal/criteria"
	"comprules/internal/store"
)

// RuleView is a rule as exposed to snapshot consumers: the raw criteria
// plus its extracted facts and a per-rule fingerprint so consumers can
// cheaply detect which rules changed between snapshots.
type RuleView struct {
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Criteria          string    `json:"criteria"`
	Benefit           string    `json:"benefit,omitempty"`
	PropertyIDs       []int     `json:"property_ids"`
	ExcludedGameTypes []string  `json:"excluded_game_types"`
	AppliesToAllGames bool      `json:"applies_to_all_games"`
	FactsHash         string    `json:"factsHash"`
	Env               string    `json:"env"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type Snapshot struct {
	ETag      string              `json:"etag"`
	Rules     map[string]RuleView `json:"rules"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

var current atomic.Pointer[Snapshot]

// Load returns the current snapshot, or an empty one before the first build.
func Load() *Snapshot {
	if s := current.Load(); s != nil {
		return s
	}
	return &Snapshot{ETag: "", Rules: map[string]RuleView{}, UpdatedAt: time.Now().UTC()}
}

// BuildFromRules builds a snapshot from stored rules. Disabled rules are
// skipped; rules whose criteria fail extraction are skipped and logged.
// Store-side validation makes that unreachable for rules admitted through
// the API, but imported or hand-edited data may carry them.
func BuildFromRules(rules []store.Rule) *Snapshot {
	views := make(map[string]RuleView, len(rules))
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		facts, err := criteria.Extract(r.Criteria)
		if err != nil {
			log.Printf("[snapshot] skipping rule %q: %v", r.Name, err)
			continue
		}
		views[r.Name] = RuleView{
			Name:              r.Name,
			Description:       r.Description,
			Criteria:          r.Criteria,
			Benefit:           r.Benefit,
			PropertyIDs:       facts.PropertyIDs,
			ExcludedGameTypes: facts.ExcludedGameTypes,
			AppliesToAllGames: facts.AppliesToAllGames,
			FactsHash:         factsHash(facts),
			Env:               r.Env,
			UpdatedAt:         r.UpdatedAt,
		}
	}

	blob, _ := json.Marshal(views)
	sum := sha256.Sum256(blob)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return &Snapshot{ETag: etag, Rules: views, UpdatedAt: time.Now().UTC()}
}

// Update swaps in a new snapshot and notifies SSE listeners.
func Update(s *Snapshot) {
	current.Store(s)
	publishUpdate(s.ETag)
}

// factsHash fingerprints the extracted facts of a single rule. xxhash is
// enough here: the fingerprint is a change detector, not a security
// boundary.
func factsHash(facts criteria.Facts) string {
	blob, _ := json.Marshal(facts)
	return fmt.Sprintf("%016x", xxhash.Sum64(blob))
}
