package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devs-assistent/server/internal/assistant/model"
)

// DefaultFilename is the download name offered for an exported answer.
const DefaultFilename = "respuesta-devs-assistent.md"

// ErrNoAnswer is returned when there is nothing to export.
var ErrNoAnswer = errors.New("no answer to export")

// Markdown renders an answer as a standalone Markdown document.
func Markdown(ans *model.StructuredAnswer) string {
	if ans == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("# Respuesta de Devs-Assistent\n\n")
	b.WriteString("## Explicación\n")
	b.WriteString(strings.TrimSpace(ans.Explanation))
	b.WriteString("\n")

	if s := ans.CodeSnippet; s != nil {
		fence := fenceFor(s.Code)
		b.WriteString("\n## Fragmento de Código\n")
		fmt.Fprintf(&b, "%s%s\n%s\n%s\n", fence, s.Language, strings.TrimRight(s.Code, "\n"), fence)
	}

	b.WriteString("\n## Fuentes\n")
	for _, src := range ans.Sources {
		fmt.Fprintf(&b, "- [%s](%s)\n", src.Title, src.URL)
	}
	return b.String()
}

// fenceFor picks a backtick fence longer than any run inside code.
func fenceFor(code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

// LastAnswer returns the most recent assistant answer in turns.
func LastAnswer(turns []model.Turn) (*model.StructuredAnswer, error) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == model.RoleAssistant && turns[i].Answer != nil {
			return turns[i].Answer, nil
		}
	}
	return nil, ErrNoAnswer
}

// WriteFile writes the Markdown export of ans to path. A directory path
// receives DefaultFilename.
func WriteFile(path string, ans *model.StructuredAnswer) (string, error) {
	if ans == nil {
		return "", ErrNoAnswer
	}
	if path == "" {
		path = DefaultFilename
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFilename)
	}
	if err := os.WriteFile(path, []byte(Markdown(ans)), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
