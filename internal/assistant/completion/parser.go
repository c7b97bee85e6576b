package completion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/devs-assistent/server/internal/assistant/model"
	errx "github.com/devs-assistent/server/internal/core/error"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// DefaultExplanation replaces a missing or empty explanation.
const DefaultExplanation = "No se proporcionó explicación."

// basic safety limits to avoid pathological payloads
const (
	maxContentLen = 256 * 1024 // 256KB
	maxSources    = 10
	maxErrSnippet = 200
)

type rawAnswer struct {
	Explanation json.RawMessage `json:"explanation"`
	CodeSnippet json.RawMessage `json:"codeSnippet"`
	Sources     json.RawMessage `json:"sources"`
}

type rawSnippet struct {
	Code     *string `json:"code"`
	Language *string `json:"language"`
}

type rawSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// ParseAnswer validates the model output and normalises it into a fully
// populated StructuredAnswer. Only a payload that is not a JSON object fails;
// missing or malformed optional fields fall back to defaults.
func ParseAnswer(content string) (ans *model.StructuredAnswer, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "answer_parser").Msgf("panic recovered: %v", r)
			ans = nil
			err = errx.Parse(fmt.Errorf("answer parser panic: %v", r))
		}
	}()

	if len(content) > maxContentLen {
		return nil, errx.Parse(fmt.Errorf("response too large: %d bytes", len(content)))
	}

	body := stripFences(content)
	if body == "" {
		return nil, errx.Parse(errors.New("empty response"))
	}

	if body[0] != '{' {
		return nil, errx.Parse(fmt.Errorf("not a JSON object: %q", safeSnippet(body)))
	}

	// Unmarshal rejects anything after the top-level object
	var raw rawAnswer
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, errx.Parse(fmt.Errorf("decode %q: %w", safeSnippet(body), err))
	}

	ans = &model.StructuredAnswer{
		Explanation: parseExplanation(raw.Explanation),
		CodeSnippet: parseSnippet(raw.CodeSnippet),
		Sources:     parseSources(raw.Sources),
	}
	return ans, nil
}

// stripFences removes a surrounding ```json fence some models emit despite
// being asked for bare JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseExplanation(raw json.RawMessage) string {
	if isNull(raw) {
		return DefaultExplanation
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
		return DefaultExplanation
	}
	return s
}

func parseSnippet(raw json.RawMessage) *model.CodeSnippet {
	if isNull(raw) {
		return nil
	}
	var rs rawSnippet
	if err := json.Unmarshal(raw, &rs); err != nil {
		logx.Debug().Err(err).Msg("dropping malformed codeSnippet")
		return nil
	}
	if rs.Code == nil || strings.TrimSpace(*rs.Code) == "" {
		return nil
	}
	lang := "text"
	if rs.Language != nil && strings.TrimSpace(*rs.Language) != "" {
		lang = strings.TrimSpace(*rs.Language)
	}
	return &model.CodeSnippet{Code: *rs.Code, Language: lang}
}

func parseSources(raw json.RawMessage) []model.Source {
	out := []model.Source{}
	if isNull(raw) {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		logx.Debug().Err(err).Msg("dropping malformed sources")
		return out
	}
	for _, item := range items {
		if len(out) == maxSources {
			break
		}
		var rs rawSource
		if err := json.Unmarshal(item, &rs); err != nil {
			continue
		}
		if strings.TrimSpace(rs.Title) == "" && strings.TrimSpace(rs.URL) == "" {
			continue
		}
		out = append(out, model.Source{
			Title: strings.TrimSpace(rs.Title),
			URL:   strings.TrimSpace(rs.URL),
			Type:  model.ParseSourceType(rs.Type),
		})
	}
	return out
}

func safeSnippet(s string) string {
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
