package snapshot

import (
	"testing"
	"time"

	"comprules/internal/store"
)

func rule(name, criteria string, enabled bool) store.Rule {
	return store.Rule{
		Name:      name,
		Criteria:  criteria,
		Enabled:   enabled,
		Env:       "prod",
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestBuildFromRules(t *testing.T) {
	s := BuildFromRules([]store.Rule{
		rule("comp-dollars", `@RatingTypeID=2 AND NOT ((@TableGameType="PK")) AND (@Property=13)`, true),
		rule("disabled", `(@Property=5)`, false),
		rule("bad-criteria", `@RatingTypeID=2`, true), // no property id
	})

	if len(s.Rules) != 1 {
		t.Fatalf("expected 1 rule view, got %d", len(s.Rules))
	}

	view, ok := s.Rules["comp-dollars"]
	if !ok {
		t.Fatal("comp-dollars missing from snapshot")
	}
	if len(view.PropertyIDs) != 1 || view.PropertyIDs[0] != 13 {
		t.Errorf("property ids: got %v, want [13]", view.PropertyIDs)
	}
	if view.AppliesToAllGames {
		t.Error("rule excludes PK, applies_to_all_games must be false")
	}
	if view.FactsHash == "" {
		t.Error("expected a facts hash")
	}
	if s.ETag == "" {
		t.Error("expected an ETag")
	}
}

func TestETag_StableAndSensitive(t *testing.T) {
	rules := []store.Rule{rule("r", `(@Property=7)`, true)}

	a := BuildFromRules(rules)
	b := BuildFromRules(rules)
	if a.ETag != b.ETag {
		t.Errorf("same rules must yield the same ETag: %s vs %s", a.ETag, b.ETag)
	}

	changed := []store.Rule{rule("r", `(@Property=8)`, true)}
	c := BuildFromRules(changed)
	if c.ETag == a.ETag {
		t.Error("changed criteria must change the ETag")
	}

	if a.Rules["r"].FactsHash == c.Rules["r"].FactsHash {
		t.Error("changed facts must change the facts hash")
	}
}

func TestLoadAndUpdate(t *testing.T) {
	initial := Load()
	if initial == nil {
		t.Fatal("Load must never return nil")
	}

	s := BuildFromRules([]store.Rule{rule("r", `(@Property=7)`, true)})
	Update(s)

	got := Load()
	if got.ETag != s.ETag {
		t.Errorf("Load after Update: got etag %s, want %s", got.ETag, s.ETag)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ch, unsub := Subscribe()
	defer unsub()

	s := BuildFromRules([]store.Rule{rule("r", `(@Property=9)`, true)})
	Update(s)

	select {
	case etag := <-ch:
		if etag != s.ETag {
			t.Errorf("got etag %s, want %s", etag, s.ETag)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestSubscriberCount(t *testing.T) {
	base := SubscriberCount()

	ch1, unsub1 := Subscribe()
	_, unsub2 := Subscribe()
	if got := SubscriberCount(); got != base+2 {
		t.Errorf("after two subscribes: got %d, want %d", got, base+2)
	}

	unsub1()
	if got := SubscriberCount(); got != base+1 {
		t.Errorf("after one unsubscribe: got %d, want %d", got, base+1)
	}

	unsub2()
	if got := SubscriberCount(); got != base {
		t.Errorf("after both unsubscribe: got %d, want %d", got, base)
	}

	if _, open := <-ch1; open {
		t.Error("unsubscribed channel must be closed")
	}
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	ch, unsub := Subscribe()
	defer unsub()

	// Fill the subscriber's buffer and publish again; Update must return.
	done := make(chan struct{})
	go func() {
		Update(BuildFromRules([]store.Rule{rule("a", `(@Property=1)`, true)}))
		Update(BuildFromRules([]store.Rule{rule("b", `(@Property=2)`, true)}))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
	<-ch // drain
}
