package query_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vdellis/inkpost/internal/apperr"
	"github.com/vdellis/inkpost/internal/query"
)

func TestDecodeRecordPreservesKeyOrder(t *testing.T) {
	body := strings.NewReader(`{"b": 1, "a": "x", "c": true}`)

	rec, err := query.DecodeRecord(body, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "c"}, rec.Columns())
	require.Equal(t, []any{int64(1), "x", true}, rec.Values())
}

func TestDecodeRecordDropsUnknownKeys(t *testing.T) {
	body := strings.NewReader(`{"title": "hi", "evil; --": "x", "id": 99}`)

	rec, err := query.DecodeRecord(body, []string{"title", "content"})
	require.NoError(t, err)
	require.Equal(t, []string{"title"}, rec.Columns())
}

func TestDecodeRecordRejectsNonObject(t *testing.T) {
	for _, body := range []string{`[1, 2]`, `"text"`, `{broken`, ``} {
		_, err := query.DecodeRecord(strings.NewReader(body), []string{"a"})
		require.ErrorIs(t, err, apperr.ErrInvalidInput, "body %q", body)
	}
}

func TestDecodeRecordScalars(t *testing.T) {
	body := strings.NewReader(`{"n": 3.5, "s": "v", "b": false, "z": null}`)

	rec, err := query.DecodeRecord(body, []string{"n", "s", "b", "z"})
	require.NoError(t, err)
	require.Equal(t, []any{3.5, "v", false, nil}, rec.Values())
}

func TestRecordSetAndGet(t *testing.T) {
	rec := query.Record{{Column: "a", Value: 1}}

	rec.Set("b", 2)
	rec.Set("a", 3)

	require.Equal(t, []string{"a", "b"}, rec.Columns())

	v, ok := rec.Get("a")
	require.True(t, ok)
	require.Equal(t, 3, v)

	_, ok = rec.Get("missing")
	require.False(t, ok)

	require.Equal(t, map[string]any{"a": 3, "b": 2}, rec.Map())
}
