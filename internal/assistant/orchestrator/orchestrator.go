package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/devs-assistent/server/internal/assistant/model"
	errx "github.com/devs-assistent/server/internal/core/error"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// ApologyMessage is the explanation of every synthesized error answer.
const ApologyMessage = "Lo siento, ocurrió un error. Por favor, revisa la consola para más detalles o inténtalo de nuevo más tarde."

var (
	// ErrBlankQuery rejects queries that are empty after trimming.
	ErrBlankQuery = errors.New("query is blank")
	// ErrBusy rejects a submission while another one is pending.
	ErrBusy = errors.New("a request is already pending")
)

// Completer produces a structured answer for a query.
type Completer interface {
	Complete(ctx context.Context, query string) (*model.StructuredAnswer, error)
}

// TurnLog is the part of the conversation store the orchestrator drives.
type TurnLog interface {
	AppendTurn(turn model.Turn)
	RecordQuery(ctx context.Context, q string) error
}

// Result describes one completed request/response cycle.
type Result struct {
	Query  string
	Answer *model.StructuredAnswer
	// Err is the completion failure behind an error answer, nil on success.
	Err      error
	Duration time.Duration
}

// Failed reports whether the assistant turn is a synthesized error answer.
func (r Result) Failed() bool { return r.Err != nil }

// Orchestrator runs IDLE → PENDING → IDLE cycles with at most one request in
// flight.
type Orchestrator struct {
	log       TurnLog
	completer Completer
	pending   atomic.Bool
}

func New(log TurnLog, completer Completer) *Orchestrator {
	return &Orchestrator{log: log, completer: completer}
}

// Pending reports whether a request is in flight.
func (o *Orchestrator) Pending() bool {
	return o.pending.Load()
}

// Submit appends the user turn, records the query, asks the completer and
// appends the assistant turn. Completion failures become an error answer and
// are reported in Result.Err; the returned error is only ErrBlankQuery or
// ErrBusy, in which case nothing was appended.
func (o *Orchestrator) Submit(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, errx.Invalid(ErrBlankQuery)
	}
	if !o.pending.CompareAndSwap(false, true) {
		logx.Debug().Int("query_len", len(query)).Msg("submission ignored while pending")
		return Result{}, ErrBusy
	}
	defer o.pending.Store(false)

	start := time.Now()
	o.log.AppendTurn(model.UserTurn(query))
	if err := o.log.RecordQuery(ctx, query); err != nil {
		logx.Warn().Err(err).Msg("failed to persist query history")
	}

	res := Result{Query: query}
	ans, err := o.complete(ctx, query)
	if err != nil {
		logx.Error().Err(err).Str("kind", string(errx.KindOf(err))).Msg("completion failed")
		res.Err = err
		res.Answer = ErrorAnswer(err)
		o.log.AppendTurn(model.ErrorTurn(res.Answer))
	} else {
		res.Answer = ans
		o.log.AppendTurn(model.AssistantTurn(ans))
	}
	res.Duration = time.Since(start)

	logx.Info().
		Bool("failed", res.Failed()).
		Dur("duration", res.Duration).
		Msg("turn completed")
	return res, nil
}

// complete converts completer panics into errors so the pending flag and the
// turn log stay consistent.
func (o *Orchestrator) complete(ctx context.Context, query string) (ans *model.StructuredAnswer, err error) {
	defer func() {
		if r := recover(); r != nil {
			ans, err = nil, fmt.Errorf("completion panic: %v", r)
		}
	}()
	ans, err = o.completer.Complete(ctx, query)
	if err == nil && ans == nil {
		err = errors.New("completion returned no answer")
	}
	return ans, err
}

// ErrorAnswer builds the user-facing answer for a failed completion: the
// apology plus the raw error as a code comment.
func ErrorAnswer(err error) *model.StructuredAnswer {
	return &model.StructuredAnswer{
		Explanation: ApologyMessage,
		CodeSnippet: &model.CodeSnippet{
			Code:     "// Error: " + err.Error(),
			Language: "text",
		},
		Sources: []model.Source{},
	}
}
