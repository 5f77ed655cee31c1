package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Atomic corpus storage
// Results are checkpointed as they arrive and committed as one JSON array.

func TestCorpusFile_SaveWritesCheckpointOnly(t *testing.T) {
	t.Parallel()

	// Given a corpus file in an empty directory
	path := filepath.Join(t.TempDir(), "output.json")
	store := fs.NewCorpusFile(path)

	// When I save a result
	err := store.Save(context.Background(), ragdoc.NewPageSuccess("https://docs.example.com/a", "alpha"))
	require.NoError(t, err)

	// Then the checkpoint exists
	_, err = os.Stat(store.CheckpointPath())
	require.NoError(t, err)

	// And the final file does not exist yet
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "final file should not exist until commit")
}

func TestCorpusFile_CommitWritesArrayAndRemovesCheckpoint(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "output.json")
	store := fs.NewCorpusFile(path)
	require.NoError(t, store.Save(context.Background(), ragdoc.NewPageSuccess("https://docs.example.com/a", "<b>ñandú</b>")))
	require.NoError(t, store.Save(context.Background(), ragdoc.NewPageFailure("https://docs.example.com/b", errors.New("HTTP 404"))))

	require.NoError(t, store.Commit())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"url":"https://docs.example.com/a","text":"<b>ñandú</b>"},
		{"url":"https://docs.example.com/b","error":"HTTP 404"}
	]`, string(data))
	assert.Contains(t, string(data), "ñandú", "non-ASCII text is written unescaped")
	assert.Contains(t, string(data), "<b>", "HTML is written unescaped")

	_, err = os.Stat(store.CheckpointPath())
	assert.True(t, os.IsNotExist(err), "checkpoint should be removed after commit")
}

func TestCorpusFile_AbortRemovesCheckpoint(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "output.json")
	store := fs.NewCorpusFile(path)
	require.NoError(t, store.Save(context.Background(), ragdoc.NewPageSuccess("https://a", "x")))

	require.NoError(t, store.Abort())

	_, err := os.Stat(store.CheckpointPath())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCorpusFile_Resume(t *testing.T) {
	t.Parallel()

	t.Run("restores checkpointed results", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "output.json")

		// Given an interrupted crawl that checkpointed one result
		first := fs.NewCorpusFile(path)
		require.NoError(t, first.Save(context.Background(), ragdoc.NewPageSuccess("https://a/1", "one")))

		// When a new run resumes and saves another result
		second := fs.NewCorpusFile(path)
		resumed, err := second.Resume()
		require.NoError(t, err)
		require.NoError(t, second.Save(context.Background(), ragdoc.NewPageSuccess("https://a/2", "two")))
		require.NoError(t, second.Commit())

		// Then both results are committed
		assert.Len(t, resumed, 1)
		assert.Equal(t, "https://a/1", resumed[0].URL)

		got, err := fs.ReadCorpus(path)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "https://a/1", got[0].URL)
		assert.Equal(t, "https://a/2", got[1].URL)
	})

	t.Run("ignores a truncated last line", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "output.json")
		checkpoint := `{"url":"https://a/1","text":"one"}` + "\n" + `{"url":"https://a/2","te`
		require.NoError(t, os.WriteFile(path+".partial", []byte(checkpoint), 0644))

		resumed, err := fs.NewCorpusFile(path).Resume()

		require.NoError(t, err)
		require.Len(t, resumed, 1)
		assert.Equal(t, "https://a/1", resumed[0].URL)
	})

	t.Run("survives a second interruption after a truncated line", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "output.json")
		checkpoint := `{"url":"https://a/1","text":"one"}` + "\n" + `{"url":"https://a/2","te`
		require.NoError(t, os.WriteFile(path+".partial", []byte(checkpoint), 0644))

		// Given a resumed run that saves two more results before it is interrupted
		second := fs.NewCorpusFile(path)
		_, err := second.Resume()
		require.NoError(t, err)
		require.NoError(t, second.Save(context.Background(), ragdoc.NewPageSuccess("https://a/2", "two")))
		require.NoError(t, second.Save(context.Background(), ragdoc.NewPageSuccess("https://a/3", "three")))

		// When a third run resumes
		resumed, err := fs.NewCorpusFile(path).Resume()

		// Then every complete result is restored
		require.NoError(t, err)
		require.Len(t, resumed, 3)
		assert.Equal(t, "https://a/1", resumed[0].URL)
		assert.Equal(t, "https://a/2", resumed[1].URL)
		assert.Equal(t, "https://a/3", resumed[2].URL)
	})

	t.Run("missing checkpoint", func(t *testing.T) {
		t.Parallel()

		resumed, err := fs.NewCorpusFile(filepath.Join(t.TempDir(), "output.json")).Resume()

		require.NoError(t, err)
		assert.Empty(t, resumed)
	})
}

func TestReadCorpus(t *testing.T) {
	t.Parallel()

	t.Run("round trips WriteCorpus", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "output.json")
		results := []ragdoc.PageResult{
			ragdoc.NewPageSuccess("https://a/1", "one"),
			ragdoc.NewPageFailure("https://a/2", errors.New("timeout")),
		}
		require.NoError(t, fs.WriteCorpus(path, results))

		got, err := fs.ReadCorpus(path)

		require.NoError(t, err)
		assert.Equal(t, results, got)
	})

	t.Run("empty corpus is an empty array", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "output.json")
		require.NoError(t, fs.WriteCorpus(path, nil))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(data))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := fs.ReadCorpus(filepath.Join(t.TempDir(), "nope.json"))

		assert.Equal(t, ragdoc.ENOTFOUND, ragdoc.ErrorCode(err))
	})

	t.Run("invalid entry", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "output.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"url":"u"}]`), 0644))

		_, err := fs.ReadCorpus(path)

		assert.Equal(t, ragdoc.EPARSE, ragdoc.ErrorCode(err))
	})
}
