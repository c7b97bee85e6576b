package model

import "strings"

// Role identifies the author of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SourceType is the provenance category of a cited Source.
type SourceType string

const (
	SourceDocumentation SourceType = "documentation"
	SourceStackOverflow SourceType = "stackoverflow"
	SourceGitHub        SourceType = "github"
)

// ParseSourceType normalises a free-form type label. Unknown labels map to
// documentation.
func ParseSourceType(v string) SourceType {
	switch SourceType(strings.ToLower(strings.TrimSpace(v))) {
	case SourceStackOverflow:
		return SourceStackOverflow
	case SourceGitHub:
		return SourceGitHub
	default:
		return SourceDocumentation
	}
}

type Source struct {
	Title string     `json:"title"`
	URL   string     `json:"url"`
	Type  SourceType `json:"type"`
}

type CodeSnippet struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// StructuredAnswer is the validated assistant reply. CodeSnippet is nil when
// the model returned no usable code; Sources is never nil.
type StructuredAnswer struct {
	Explanation string       `json:"explanation"`
	CodeSnippet *CodeSnippet `json:"codeSnippet"`
	Sources     []Source     `json:"sources"`
}

// Turn is one entry of the conversation log.
//
// For RoleUser, Query holds the raw text. For RoleAssistant, Answer holds the
// reply; Failed marks a synthesized error answer.
type Turn struct {
	Role   Role              `json:"role"`
	Query  string            `json:"query,omitempty"`
	Answer *StructuredAnswer `json:"answer,omitempty"`
	Failed bool              `json:"failed,omitempty"`
}

// UserTurn builds a user turn carrying the raw query text.
func UserTurn(query string) Turn {
	return Turn{Role: RoleUser, Query: query}
}

// AssistantTurn builds an assistant turn carrying a completed answer.
func AssistantTurn(answer *StructuredAnswer) Turn {
	return Turn{Role: RoleAssistant, Answer: answer}
}

// ErrorTurn builds an assistant turn carrying a synthesized error answer.
func ErrorTurn(answer *StructuredAnswer) Turn {
	return Turn{Role: RoleAssistant, Answer: answer, Failed: true}
}
