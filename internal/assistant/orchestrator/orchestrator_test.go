package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devs-assistent/server/internal/assistant/conversation"
	"github.com/devs-assistent/server/internal/assistant/model"
	"github.com/devs-assistent/server/internal/assistant/repo"
	errx "github.com/devs-assistent/server/internal/core/error"
)

type completerFunc func(ctx context.Context, query string) (*model.StructuredAnswer, error)

func (f completerFunc) Complete(ctx context.Context, query string) (*model.StructuredAnswer, error) {
	return f(ctx, query)
}

func newStore(t *testing.T) (*conversation.Store, *repo.MemoryPreferenceRepository) {
	t.Helper()
	r := repo.NewMemoryPreferenceRepository()
	s := conversation.NewStore(r, model.HistoryConfig{})
	require.NoError(t, s.Load(context.Background()))
	return s, r
}

func corsAnswer() *model.StructuredAnswer {
	return &model.StructuredAnswer{
		Explanation: "...",
		CodeSnippet: &model.CodeSnippet{Code: "app.add_middleware(...)", Language: "python"},
		Sources: []model.Source{
			{Title: "FastAPI Docs", URL: "https://...", Type: model.SourceDocumentation},
		},
	}
}

func TestSubmit_SuccessScenario(t *testing.T) {
	store, _ := newStore(t)
	want := corsAnswer()
	o := New(store, completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
		return want, nil
	}))

	query := "¿Cómo configurar CORS en FastAPI?"
	res, err := o.Submit(context.Background(), query)

	require.NoError(t, err)
	assert.False(t, res.Failed())
	turns := store.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, model.UserTurn(query), turns[0])
	assert.Equal(t, model.RoleAssistant, turns[1].Role)
	assert.Equal(t, want, turns[1].Answer)
	assert.False(t, turns[1].Failed)
	assert.Equal(t, query, store.History()[0])
	assert.False(t, o.Pending())
}

func TestSubmit_FailureScenario(t *testing.T) {
	store, _ := newStore(t)
	o := New(store, completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
		return nil, errors.New("rate limited")
	}))

	res, err := o.Submit(context.Background(), "q")

	require.NoError(t, err)
	assert.True(t, res.Failed())
	turns := store.Turns()
	require.Len(t, turns, 2)
	ans := turns[1].Answer
	assert.True(t, turns[1].Failed)
	assert.Equal(t, ApologyMessage, ans.Explanation)
	require.NotNil(t, ans.CodeSnippet)
	assert.Contains(t, ans.CodeSnippet.Code, "rate limited")
	assert.Equal(t, "text", ans.CodeSnippet.Language)
	assert.Empty(t, ans.Sources)
	assert.False(t, o.Pending())
}

func TestSubmit_EveryErrorKindBecomesErrorTurn(t *testing.T) {
	errs := []error{
		errx.Configuration(errors.New("no key")),
		errx.Transport(errors.New("dial tcp: timeout")),
		errx.Parse(errors.New("unexpected end of JSON input")),
	}
	for _, cerr := range errs {
		t.Run(string(errx.KindOf(cerr)), func(t *testing.T) {
			store, _ := newStore(t)
			o := New(store, completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
				return nil, cerr
			}))

			_, err := o.Submit(context.Background(), "q")
			require.NoError(t, err)
			require.Equal(t, 2, store.Len())
			last, _ := store.Last()
			assert.Contains(t, last.Answer.CodeSnippet.Code, cerr.Error())
			assert.False(t, o.Pending())
		})
	}
}

func TestSubmit_PanicReleasesPending(t *testing.T) {
	store, _ := newStore(t)
	o := New(store, completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
		panic("boom")
	}))

	res, err := o.Submit(context.Background(), "q")

	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, 2, store.Len())
	assert.False(t, o.Pending())
}

func TestSubmit_NilAnswerIsFailure(t *testing.T) {
	store, _ := newStore(t)
	o := New(store, completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
		return nil, nil
	}))

	res, err := o.Submit(context.Background(), "q")
	require.NoError(t, err)
	assert.True(t, res.Failed())
}

func TestSubmit_BlankQueryIsRejected(t *testing.T) {
	store, r := newStore(t)
	calls := 0
	o := New(store, completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
		calls++
		return corsAnswer(), nil
	}))

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := o.Submit(context.Background(), q)
		require.ErrorIs(t, err, ErrBlankQuery)
	}
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, r.Saves)
}

func TestSubmit_WhilePendingIsNoOp(t *testing.T) {
	store, _ := newStore(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	o := New(store, completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
		close(entered)
		<-release
		return corsAnswer(), nil
	}))

	done := make(chan Result)
	go func() {
		res, _ := o.Submit(context.Background(), "first")
		done <- res
	}()
	<-entered

	assert.True(t, o.Pending())
	before := store.Len()
	_, err := o.Submit(context.Background(), "second")
	require.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, before, store.Len())
	assert.NotContains(t, store.History(), "second")

	close(release)
	select {
	case res := <-done:
		assert.False(t, res.Failed())
	case <-time.After(time.Second):
		t.Fatal("first submission did not finish")
	}
	assert.False(t, o.Pending())
	assert.Equal(t, 2, store.Len())
}

func TestSubmit_HistoryFailureDoesNotAbortTurn(t *testing.T) {
	store, r := newStore(t)
	r.SaveErr = errors.New("read-only")
	o := New(store, completerFunc(func(context.Context, string) (*model.StructuredAnswer, error) {
		return corsAnswer(), nil
	}))

	res, err := o.Submit(context.Background(), "q")
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, 2, store.Len())
}

func TestSubmit_SequentialTurnsAlternate(t *testing.T) {
	store, _ := newStore(t)
	o := New(store, completerFunc(func(_ context.Context, q string) (*model.StructuredAnswer, error) {
		if q == "bad" {
			return nil, errors.New("nope")
		}
		return &model.StructuredAnswer{Explanation: q, Sources: []model.Source{}}, nil
	}))

	for _, q := range []string{"a", "bad", "c"} {
		_, err := o.Submit(context.Background(), q)
		require.NoError(t, err)
	}

	turns := store.Turns()
	require.Len(t, turns, 6)
	for i, turn := range turns {
		if i%2 == 0 {
			assert.Equal(t, model.RoleUser, turn.Role)
		} else {
			assert.Equal(t, model.RoleAssistant, turn.Role)
		}
	}
	assert.Equal(t, []string{"c", "bad", "a"}, store.History())
}
