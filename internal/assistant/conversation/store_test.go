package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/devs-assistent/server/internal/assistant/model"
	"github.com/devs-assistent/server/internal/assistant/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *repo.MemoryPreferenceRepository) {
	t.Helper()
	r := repo.NewMemoryPreferenceRepository()
	s := NewStore(r, model.HistoryConfig{Limit: DefaultHistoryLimit})
	require.NoError(t, s.Load(context.Background()))
	return s, r
}

func TestRecordQuery_IdempotentUnderRepetition(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordQuery(ctx, "same"))
	require.NoError(t, s.RecordQuery(ctx, "same"))

	assert.Equal(t, []string{"same"}, s.History())
}

func TestRecordQuery_MovesExistingToFront(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c", "b"} {
		require.NoError(t, s.RecordQuery(ctx, q))
	}

	assert.Equal(t, []string{"b", "c", "a"}, s.History())
}

func TestRecordQuery_TruncatesToFifty(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for i := 0; i <= 50; i++ {
		require.NoError(t, s.RecordQuery(ctx, fmt.Sprintf("q%02d", i)))
	}

	h := s.History()
	require.Len(t, h, 50)
	assert.Equal(t, "q50", h[0])
	assert.Equal(t, "q01", h[49])
	assert.NotContains(t, h, "q00")
}

func TestRecordQuery_PersistsBeforeReturning(t *testing.T) {
	s, r := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordQuery(ctx, "first"))
	require.NoError(t, s.RecordQuery(ctx, "second"))

	raw, err := r.LoadHistory(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `["second","first"]`, string(raw))
	assert.Equal(t, 2, r.Saves)
}

func TestRecordQuery_SaveFailureStillUpdatesMemory(t *testing.T) {
	s, r := newStore(t)
	r.SaveErr = errors.New("disk full")

	err := s.RecordQuery(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, []string{"q"}, s.History())
}

func TestLoad_AdoptsSavedHistoryVerbatim(t *testing.T) {
	r := repo.NewMemoryPreferenceRepository()
	r.SetRawHistory([]byte(`["z","y","x"]`))
	s := NewStore(r, model.HistoryConfig{})

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, []string{"z", "y", "x"}, s.History())
}

func TestLoad_CorruptOrMissingStartsEmpty(t *testing.T) {
	cases := map[string][]byte{
		"missing": nil,
		"corrupt": []byte(`{not json`),
		"null":    []byte(`null`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			r := repo.NewMemoryPreferenceRepository()
			r.SetRawHistory(raw)
			s := NewStore(r, model.HistoryConfig{})

			require.NoError(t, s.Load(context.Background()))
			assert.NotNil(t, s.History())
			assert.Empty(t, s.History())
		})
	}
}

func TestClearHistory_LeavesTurnLog(t *testing.T) {
	s, r := newStore(t)
	ctx := context.Background()

	s.AppendTurn(model.UserTurn("hola"))
	require.NoError(t, s.RecordQuery(ctx, "hola"))
	require.NoError(t, s.ClearHistory(ctx))

	assert.Empty(t, s.History())
	assert.Equal(t, 1, s.Len())
	raw, err := r.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestAppendTurn_KeepsOrderAndReturnsCopies(t *testing.T) {
	s, _ := newStore(t)

	s.AppendTurn(model.UserTurn("one"))
	s.AppendTurn(model.AssistantTurn(&model.StructuredAnswer{Explanation: "two"}))

	turns := s.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, model.RoleUser, turns[0].Role)
	assert.Equal(t, model.RoleAssistant, turns[1].Role)

	turns[0].Query = "mutated"
	assert.Equal(t, "one", s.Turns()[0].Query)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, "two", last.Answer.Explanation)
}

func TestTheme_DefaultsAndValidation(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	theme, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, theme)

	require.NoError(t, s.SetTheme(ctx, model.ThemeLight))
	theme, err = s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeLight, theme)

	assert.Error(t, s.SetTheme(ctx, model.Theme("sepia")))
}

func TestHistoryAt(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	for _, q := range []string{"a", "b"} {
		require.NoError(t, s.RecordQuery(ctx, q))
	}

	q, ok := s.HistoryAt(0)
	assert.True(t, ok)
	assert.Equal(t, "b", q)
	q, ok = s.HistoryAt(1)
	assert.True(t, ok)
	assert.Equal(t, "a", q)

	_, ok = s.HistoryAt(2)
	assert.False(t, ok)
	_, ok = s.HistoryAt(-1)
	assert.False(t, ok)
}
