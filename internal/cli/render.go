package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/devs-assistent/server/internal/assistant"
	"github.com/devs-assistent/server/internal/assistant/export"
	"github.com/devs-assistent/server/internal/assistant/model"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// renderer prints answers either as raw Markdown, as JSON or through glamour
// with the session theme as style.
type renderer struct {
	out    io.Writer
	plain  bool
	asJSON bool
}

func (r renderer) answer(ctx context.Context, sess *assistant.Session, ans *model.StructuredAnswer) error {
	if r.asJSON {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}

	md := export.Markdown(ans)
	if r.plain {
		_, err := fmt.Fprint(r.out, md)
		return err
	}

	theme, err := sess.Store.Theme(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("failed to read theme, using default")
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(string(theme)),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		logx.Warn().Err(err).Msg("markdown renderer unavailable")
		_, err = fmt.Fprint(r.out, md)
		return err
	}
	rendered, err := tr.Render(md)
	if err != nil {
		logx.Warn().Err(err).Msg("markdown rendering failed")
		rendered = md
	}
	_, err = fmt.Fprint(r.out, rendered)
	return err
}
