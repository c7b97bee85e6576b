package completion

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/system_prompt.txt
var systemPromptTemplate string

// queryVar is the template variable carrying the raw user query.
const queryVar = "query"

// newChatTemplate pairs the fixed system instruction with the user query.
// Go templates leave the JSON braces of the schema description alone.
func newChatTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPromptTemplate),
		schema.UserMessage("{{.query}}"),
	)
}

// templateVars builds the variables for one completion request.
func templateVars(query string) map[string]any {
	return map[string]any{
		queryVar: query,
		"schema": answerSchemaDescription,
	}
}

// RenderSystemPrompt renders the system instruction alone, for diagnostics.
func RenderSystemPrompt(ctx context.Context) (string, error) {
	msgs, err := newChatTemplate().Format(ctx, templateVars(""))
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
