package domain

import (
	"context"
	"time"
)

// Topic catalogs per module and subtype. Order matters: it breaks ties in
// SelectNextTopic.
var topicCatalogs = map[Module]map[string][]string{
	ModuleReading: {
		"": {
			"environment", "technology", "health", "education", "history",
			"science", "culture", "business", "psychology", "urban_development",
		},
	},
	ModuleListening: {
		"": {
			"accommodation", "travel", "university_life", "workplace", "health_services",
			"leisure", "shopping", "local_events", "lectures", "research_projects",
		},
	},
	ModuleWriting: {
		"task1": {"line_graph", "bar_chart", "pie_chart", "table", "process_diagram", "map", "mixed_charts"},
		"task2": {
			"education", "technology", "environment", "health", "society",
			"government", "work", "globalisation", "crime", "media",
		},
	},
	ModuleSpeaking: {
		"part1": {"hometown", "work_or_study", "hobbies", "food", "weather", "music", "daily_routine", "friends"},
		"part2": {"a_person", "a_place", "an_object", "an_event", "an_experience", "a_skill", "a_book_or_film"},
		"part3": {"education", "technology", "environment", "culture", "work", "society", "travel"},
	},
}

// defaultSubtypes is used when a caller omits the subtype of a module that
// only has subtyped catalogs.
var defaultSubtypes = map[Module]string{
	ModuleWriting:  "task2",
	ModuleSpeaking: "part1",
}

// TopicCatalog returns the ordered topic list for module and subtype.
// An unknown subtype falls back to the module's untyped catalog when one exists.
func TopicCatalog(module Module, subtype string) ([]string, bool) {
	bySubtype, ok := topicCatalogs[module]
	if !ok {
		return nil, false
	}
	if subtype == "" {
		subtype = defaultSubtypes[module]
	}
	if topics, ok := bySubtype[subtype]; ok {
		return append([]string(nil), topics...), true
	}
	if topics, ok := bySubtype[""]; ok {
		return append([]string(nil), topics...), true
	}
	return nil, false
}

// IsKnownTopic reports whether topic appears in any catalog of module.
func IsKnownTopic(module Module, topic string) bool {
	for _, topics := range topicCatalogs[module] {
		for _, t := range topics {
			if t == topic {
				return true
			}
		}
	}
	return false
}

// SelectNextTopic returns the first catalog topic whose completion count
// equals the cycle count (the minimum count across the catalog). Topics
// missing from counts are treated as 0. ok is false for an empty catalog.
func SelectNextTopic(catalog []string, counts map[string]int) (topic string, cycleCount int, ok bool) {
	if len(catalog) == 0 {
		return "", 0, false
	}

	cycleCount = counts[catalog[0]]
	for _, t := range catalog[1:] {
		if c := counts[t]; c < cycleCount {
			cycleCount = c
		}
	}
	if cycleCount < 0 {
		cycleCount = 0
	}

	for _, t := range catalog {
		if counts[t] <= cycleCount {
			return t, cycleCount, true
		}
	}
	// unreachable: the minimum is always attained
	return catalog[0], cycleCount, true
}

// TopicCompletion is one completion counter row.
type TopicCompletion struct {
	ID              string
	UserID          string
	Module          Module
	Topic           string
	CompletionCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TopicCompletionRepository stores per-user completion counters.
type TopicCompletionRepository interface {
	// GetCounts returns topic -> count for the user's module. Topics without
	// a row are absent from the map.
	GetCounts(ctx context.Context, userID string, module Module) (map[string]int, error)

	// IncrementCompletion atomically creates or increments the counter and
	// returns the new count.
	IncrementCompletion(ctx context.Context, userID string, module Module, topic string) (int, error)
}

// TopicSelection is the smart-cycle answer for one user and catalog.
type TopicSelection struct {
	Module     Module
	Subtype    string
	Topic      string
	CycleCount int
	// Counts covers every catalog topic, zero-filled.
	Counts map[string]int
}
