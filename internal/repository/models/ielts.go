package models

import (
	"database/sql"
	"time"
)

// TopicCompletion is a row of TOPIC_COMPLETIONS.
type TopicCompletion struct {
	ID              string    `db:"ID"`
	UserID          string    `db:"USER_ID"`
	Module          string    `db:"MODULE"`
	Topic           string    `db:"TOPIC"`
	CompletionCount int       `db:"COMPLETION_COUNT"`
	CreatedAt       time.Time `db:"CREATED_AT"`
	UpdatedAt       time.Time `db:"UPDATED_AT"`
}

// IELTSTest is a row of IELTS_TESTS. IS_PUBLISHED is NUMBER(1).
type IELTSTest struct {
	ID          string         `db:"ID"`
	Module      string         `db:"MODULE"`
	Topic       sql.NullString `db:"TOPIC"`
	Accent      sql.NullString `db:"ACCENT"`
	Status      string         `db:"STATUS"`
	IsPublished int            `db:"IS_PUBLISHED"`
	TimesUsed   int            `db:"TIMES_USED"`
	LastUsedAt  sql.NullTime   `db:"LAST_USED_AT"`
	Payload     string         `db:"PAYLOAD"` // CLOB, JSON document
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
}

// UserTestHistory is a row of USER_TEST_HISTORY joined with the test's accent.
type UserTestHistory struct {
	UserID  string         `db:"USER_ID"`
	TestID  string         `db:"TEST_ID"`
	Accent  sql.NullString `db:"ACCENT"`
	TakenAt time.Time      `db:"TAKEN_AT"`
}

// TestPreset is a row of TEST_PRESETS.
type TestPreset struct {
	ID          string         `db:"ID"`
	Module      string         `db:"MODULE"`
	Topic       sql.NullString `db:"TOPIC"`
	Payload     string         `db:"PAYLOAD"`
	IsPublished int            `db:"IS_PUBLISHED"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
}
