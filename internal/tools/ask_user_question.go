package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

const pendingSentinel = "PENDING"

// AskUserOption is one predefined choice for a question.
type AskUserOption struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// AskUserQuestionSpec is one question posed to the user.
type AskUserQuestionSpec struct {
	Header   string          `json:"header"`
	Question string          `json:"question"`
	Options  []AskUserOption `json:"options"`
}

// AskUserQuestionTool implements ask_user_question: a two-phase
// interactive tool. Phase 1 (no answers field) validates the
// questions and returns a pending result for the UI to present.
// Phase 2 (answers supplied) validates and returns the final result.
type AskUserQuestionTool struct{}

func NewAskUserQuestionTool() *AskUserQuestionTool { return &AskUserQuestionTool{} }

func (t *AskUserQuestionTool) ID() string { return "ask_user_question" }
func (t *AskUserQuestionTool) Description() string {
	return "Ask the user 1-4 questions, each with 2-4 options, and wait for their answers."
}

func (t *AskUserQuestionTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"header":   map[string]any{"type": "string", "description": "Short label, max 12 characters"},
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"label":       map[string]any{"type": "string"},
									"description": map[string]any{"type": "string"},
								},
								"required":             []any{"label", "description"},
								"additionalProperties": false,
							},
							"minItems": 2,
							"maxItems": 4,
						},
					},
					"required":             []any{"header", "question", "options"},
					"additionalProperties": false,
				},
				"minItems": 1,
				"maxItems": 4,
			},
			"answers": map[string]any{
				"type":        "object",
				"description": "Phase 2 only: answers keyed q0, q1, ... by question index",
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	}
}

type askUserQuestionArgs struct {
	Questions []AskUserQuestionSpec `json:"questions"`
	Answers   map[string]string     `json:"answers"`
}

func (t *AskUserQuestionTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a askUserQuestionArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if err := validateAskUserQuestions(a.Questions); err != nil {
		return Result{}, NewToolError(ErrInvalidParams, err.Error())
	}

	if a.Answers == nil {
		return Result{
			Title:  "Awaiting user response",
			Output: pendingSentinel,
			Metadata: map[string]any{
				"status":    "pending",
				"questions": a.Questions,
			},
		}, nil
	}

	for i, q := range a.Questions {
		key := fmt.Sprintf("q%d", i)
		answer, ok := a.Answers[key]
		if !ok || answer == "" {
			return Result{}, NewToolErrorf(ErrInvalidParams, "missing answer for %s (%s)", key, q.Header)
		}
	}

	var sb strings.Builder
	for i, q := range a.Questions {
		key := fmt.Sprintf("q%d", i)
		sb.WriteString(fmt.Sprintf("%s: %s\n", q.Header, a.Answers[key]))
	}

	return Result{
		Title:  "User questions answered",
		Output: strings.TrimSuffix(sb.String(), "\n"),
		Metadata: map[string]any{
			"status":  "answered",
			"answers": a.Answers,
		},
	}, nil
}

func validateAskUserQuestions(questions []AskUserQuestionSpec) error {
	if len(questions) == 0 {
		return fmt.Errorf("at least one question is required")
	}
	if len(questions) > 4 {
		return fmt.Errorf("maximum 4 questions allowed")
	}
	for i, q := range questions {
		if q.Header == "" {
			return fmt.Errorf("question %d: header is required", i+1)
		}
		if len(q.Header) > 12 {
			return fmt.Errorf("question %d: header must be at most 12 characters", i+1)
		}
		if q.Question == "" {
			return fmt.Errorf("question %d: question text is required", i+1)
		}
		if len(q.Options) < 2 || len(q.Options) > 4 {
			return fmt.Errorf("question %d: must have 2-4 options", i+1)
		}
		for j, opt := range q.Options {
			if opt.Label == "" || opt.Description == "" {
				return fmt.Errorf("question %d, option %d: label and description are required", i+1, j+1)
			}
		}
	}
	return nil
}
