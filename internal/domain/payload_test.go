package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validListeningPayload = `{
  "audio_script": "Good morning, and welcome to the city library...",
  "question_groups": [
    {
      "question_type": "form_completion",
      "instructions": "Write NO MORE THAN TWO WORDS",
      "questions": [
        {"question_number": 1, "question_text": "Membership type:", "correct_answer": "family"},
        {"question_number": "2", "question_text": "Fee:", "correct_answer": ["20 pounds", "£20"]}
      ]
    }
  ]
}`

const validReadingPayload = `{
  "passage": {"title": "Urban Bees", "content": "Beekeeping in cities has grown..."},
  "question_groups": [
    {
      "question_type": "true_false_not_given",
      "questions": [
        {"question_number": 1, "question_text": "City bees produce more honey.", "correct_answer": "NOT GIVEN"}
      ]
    }
  ]
}`

func TestValidatePayload_Valid(t *testing.T) {
	assert.NoError(t, ValidatePayload(ModuleListening, json.RawMessage(validListeningPayload)))
	assert.NoError(t, ValidatePayload(ModuleReading, json.RawMessage(validReadingPayload)))
	// a reading-shaped payload is also a valid payload for other modules
	assert.NoError(t, ValidatePayload(ModuleSpeaking, json.RawMessage(validReadingPayload)))
}

func TestValidatePayload_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		module  Module
		payload string
	}{
		{"empty", ModuleListening, ``},
		{"not json", ModuleListening, `{"question_groups": [`},
		{"top level array", ModuleListening, `[]`},
		{"no groups", ModuleListening, `{"audio_script": "x"}`},
		{"empty groups", ModuleListening, `{"question_groups": []}`},
		{"empty question type", ModuleListening,
			`{"question_groups":[{"question_type":"","questions":[{"question_number":1,"correct_answer":"a"}]}]}`},
		{"missing question type", ModuleListening,
			`{"question_groups":[{"questions":[{"question_number":1,"correct_answer":"a"}]}]}`},
		{"empty questions", ModuleListening,
			`{"question_groups":[{"question_type":"mcq","questions":[]}]}`},
		{"missing correct answer", ModuleListening,
			`{"question_groups":[{"question_type":"mcq","questions":[{"question_number":1,"question_text":"q"}]}]}`},
		{"null correct answer", ModuleListening,
			`{"question_groups":[{"question_type":"mcq","questions":[{"question_number":1,"correct_answer":null}]}]}`},
		{"empty correct answer", ModuleListening,
			`{"question_groups":[{"question_type":"mcq","questions":[{"question_number":1,"correct_answer":""}]}]}`},
		{"empty correct answer list", ModuleListening,
			`{"question_groups":[{"question_type":"mcq","questions":[{"question_number":1,"correct_answer":[]}]}]}`},
		{"missing question number", ModuleListening,
			`{"question_groups":[{"question_type":"mcq","questions":[{"correct_answer":"a"}]}]}`},
		{"one bad question among good ones", ModuleListening,
			`{"question_groups":[{"question_type":"mcq","questions":[{"question_number":1,"correct_answer":"a"},{"question_number":2}]}]}`},
		{"reading without passage", ModuleReading,
			`{"question_groups":[{"question_type":"mcq","questions":[{"question_number":1,"correct_answer":"a"}]}]}`},
		{"reading with empty passage", ModuleReading,
			`{"passage":{"title":"t","content":""},"question_groups":[{"question_type":"mcq","questions":[{"question_number":1,"correct_answer":"a"}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.module, json.RawMessage(tt.payload))
			require.Error(t, err)
			assert.Equal(t, ErrInvalidPayload, CodeOf(err))
			assert.False(t, IsValidPayload(tt.module, json.RawMessage(tt.payload)))
		})
	}
}

func TestValidatePayload_SemanticsIgnored(t *testing.T) {
	// wrong answers and odd question types are still structurally valid
	payload := `{"question_groups":[{"question_type":"??","questions":[{"question_number":999,"correct_answer":"definitely wrong"}]}]}`
	assert.NoError(t, ValidatePayload(ModuleWriting, json.RawMessage(payload)))
}
