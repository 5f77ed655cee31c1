package ragdoc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Ask(t *testing.T) {
	t.Parallel()

	t.Run("appends successful turns in order", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, q string) (*ragdoc.Answer, error) {
				return &ragdoc.Answer{Text: "re: " + q}, nil
			},
		}
		s := ragdoc.NewSession(asker)

		_, err := s.Ask(context.Background(), "one")
		require.NoError(t, err)
		_, err = s.Ask(context.Background(), "two")
		require.NoError(t, err)

		turns := s.Turns()
		require.Len(t, turns, 2)
		assert.Equal(t, "one", turns[0].Question)
		assert.Equal(t, "re: one", turns[0].Answer.Text)
		assert.Equal(t, "two", turns[1].Question)
	})

	t.Run("failed turn leaves history unchanged", func(t *testing.T) {
		t.Parallel()

		calls := 0
		asker := &mock.Asker{
			AskFn: func(_ context.Context, q string) (*ragdoc.Answer, error) {
				calls++
				if calls == 2 {
					return nil, &ragdoc.QueryError{State: ragdoc.QueryRetrieved, Err: errors.New("model unavailable")}
				}
				return &ragdoc.Answer{Text: "ok"}, nil
			},
		}
		s := ragdoc.NewSession(asker)

		_, err := s.Ask(context.Background(), "first")
		require.NoError(t, err)
		_, err = s.Ask(context.Background(), "second")
		require.Error(t, err)

		assert.Equal(t, 1, s.Len())
		assert.Equal(t, "first", s.Turns()[0].Question)
	})

	t.Run("turns is a copy", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, q string) (*ragdoc.Answer, error) {
				return &ragdoc.Answer{Text: "a"}, nil
			},
		}
		s := ragdoc.NewSession(asker)
		_, err := s.Ask(context.Background(), "q")
		require.NoError(t, err)

		turns := s.Turns()
		turns[0].Question = "changed"

		assert.Equal(t, "q", s.Turns()[0].Question)
	})
}

func TestAnswer_SourceURLs(t *testing.T) {
	t.Parallel()

	a := &ragdoc.Answer{Sources: []ragdoc.Source{
		{URL: "https://a", ChunkIndex: 0},
		{URL: "https://b", ChunkIndex: 2},
		{URL: "https://a", ChunkIndex: 1},
	}}

	assert.Equal(t, []string{"https://a", "https://b"}, a.SourceURLs())
}
