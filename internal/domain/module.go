package domain

import "strings"

// Module is one of the four IELTS skill areas.
type Module string

const (
	ModuleReading   Module = "reading"
	ModuleListening Module = "listening"
	ModuleWriting   Module = "writing"
	ModuleSpeaking  Module = "speaking"
)

// AllModules lists the modules in display order.
var AllModules = []Module{ModuleReading, ModuleListening, ModuleWriting, ModuleSpeaking}

// ParseModule normalizes s and reports whether it names a known module.
func ParseModule(s string) (Module, bool) {
	m := Module(strings.ToLower(strings.TrimSpace(s)))
	return m, m.IsValid()
}

func (m Module) IsValid() bool {
	switch m {
	case ModuleReading, ModuleListening, ModuleWriting, ModuleSpeaking:
		return true
	}
	return false
}

// Difficulty of a generated test.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// ParseDifficulty normalizes s; an empty string means medium.
func ParseDifficulty(s string) (Difficulty, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DifficultyMedium, true
	}
	d := Difficulty(s)
	return d, d.IsValid()
}

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}
