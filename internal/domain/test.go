package domain

import (
	"context"
	"encoding/json"
	"time"
)

// TestStatusReady marks a stored test that can be served.
const TestStatusReady = "ready"

// CandidateTest is a stored, pre-generated practice test.
type CandidateTest struct {
	ID          string
	Module      Module
	Topic       string
	Accent      string
	Status      string
	IsPublished bool
	TimesUsed   int
	LastUsedAt  *time.Time
	Payload     json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsServable reports whether the test passes the published/ready filter.
func (t *CandidateTest) IsServable() bool {
	return t.IsPublished && t.Status == TestStatusReady
}

// UserTestHistoryEntry records that a user was served a test. There is at
// most one entry per (user, test).
type UserTestHistoryEntry struct {
	UserID string
	TestID string
	// Accent of the served test, empty when unknown.
	Accent  string
	TakenAt time.Time
}

// TestRepository is the query surface over stored tests and serving history.
type TestRepository interface {
	// FindCandidates returns published, ready tests of module, filtered by
	// topic when topic is not empty.
	FindCandidates(ctx context.Context, module Module, topic string) ([]*CandidateTest, error)

	// RecentHistory returns the user's most recent history entries, newest first.
	RecentHistory(ctx context.Context, userID string, limit int) ([]UserTestHistoryEntry, error)

	// MarkServed increments the test's usage counter, sets last_used_at and
	// upserts the user's history entry, all in one unit of work.
	MarkServed(ctx context.Context, userID, testID string, servedAt time.Time) error

	// CreateTest stores a new test; used when seeding content.
	CreateTest(ctx context.Context, test *CandidateTest) error
}

// Preset is a stored test payload used when live generation fails.
type Preset struct {
	ID          string
	Module      Module
	Topic       string
	Payload     json.RawMessage
	IsPublished bool
	CreatedAt   time.Time
}

// PresetRepository reads and writes fallback presets.
type PresetRepository interface {
	ListPublished(ctx context.Context, module Module) ([]*Preset, error)
	SavePreset(ctx context.Context, preset *Preset) error
}

// TestSelectionRequest asks for one stored test to serve.
type TestSelectionRequest struct {
	Module          Module
	Topic           string
	Subtype         string
	PreferredAccent string
	// ExcludeIDs are treated like recently served tests.
	ExcludeIDs []string
	// UseTopicCycle picks the topic with the smart cycle when Topic is empty.
	UseTopicCycle bool
}

// TestSelection is a served test and how its topic was chosen.
type TestSelection struct {
	Test           *CandidateTest
	Topic          string
	TopicFromCycle bool
	// WidenedToModule is set when the cycled topic had no tests and the
	// whole module was used instead.
	WidenedToModule bool
}
