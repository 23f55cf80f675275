package testgen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ielts-prep/internal/domain"
)

var moduleInstructions = map[domain.Module]string{
	domain.ModuleReading: `Include a "passage" object with "title" and "content" (an academic passage of 700-900 words).
Every question must be answerable from the passage.`,
	domain.ModuleListening: `Include an "audio_script" string: the full transcript of the recording, with speaker labels.
Every question must be answerable from the script.`,
	domain.ModuleWriting: `Include a "writing_prompt" string with the task instructions. Each question's "correct_answer"
is a band-9 model answer.`,
	domain.ModuleSpeaking: `Each question is an examiner prompt. Each question's "correct_answer" is a band-9 sample answer.`,
}

const payloadShape = `Respond with ONLY a JSON object of this shape:
{
  "question_groups": [
    {
      "question_type": "string",
      "instructions": "string",
      "questions": [
        {"question_number": 1, "question_text": "string", "options": ["string"], "correct_answer": "string", "explanation": "string"}
      ]
    }
  ]
}`

// BuildPrompt renders the generation prompt for opts.
func BuildPrompt(opts domain.GenerationOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an IELTS examiner writing an original %s practice test.\n", opts.Module)
	fmt.Fprintf(&b, "Question type: %s\n", opts.QuestionType)
	fmt.Fprintf(&b, "Difficulty: %s\n", opts.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", opts.QuestionCount)
	fmt.Fprintf(&b, "Time allowed: %d minutes\n", opts.TimeMinutes)
	if opts.TopicPreference != "" {
		fmt.Fprintf(&b, "Topic: %s\n", strings.ReplaceAll(opts.TopicPreference, "_", " "))
	}

	if len(opts.ModuleConfig) > 0 {
		keys := make([]string, 0, len(opts.ModuleConfig))
		for k := range opts.ModuleConfig {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", k, opts.ModuleConfig[k])
		}
	}

	b.WriteString("\n")
	if extra, ok := moduleInstructions[opts.Module]; ok {
		b.WriteString(extra)
		b.WriteString("\n\n")
	}
	b.WriteString(payloadShape)
	return b.String()
}

// ExtractJSON pulls the JSON object out of a model response. Models wrap
// output in code fences or emit <think> blocks before the answer.
func ExtractJSON(raw string) (json.RawMessage, error) {
	cleaned := strings.TrimSpace(raw)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd > thinkStart {
			cleaned = strings.TrimSpace(cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):])
		}
	}

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no JSON object found in model response")
	}

	extracted := cleaned[jsonStart : jsonEnd+1]
	if !json.Valid([]byte(extracted)) {
		return nil, fmt.Errorf("model response is not valid JSON")
	}
	return json.RawMessage(extracted), nil
}
