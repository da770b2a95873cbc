package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhere(t *testing.T) {
	w := &where{}
	assert.Equal(t, "", w.String())

	w.add("role = $%d", "student")
	w.add("status = $%d", "active")
	assert.Equal(t, " WHERE role = $1 AND status = $2", w.String())
	assert.Equal(t, []any{"student", "active"}, w.args)
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := parseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = parseID("not-a-uuid")
	assert.ErrorIs(t, err, store.ErrMalformedID)
}

func TestOptionalID(t *testing.T) {
	got, err := optionalID("")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, "", idString(got))

	id := uuid.New()
	got, err = optionalID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id.String(), idString(got))

	_, err = optionalID("nope")
	assert.ErrorIs(t, err, store.ErrMalformedID)
}

func TestScopeIDs_DropsMalformed(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, []uuid.UUID{id}, scopeIDs([]string{"legacy-id", id.String()}))
	assert.Empty(t, scopeIDs(nil))
}

func TestStringArray(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  StringArray
	}{
		{"nil", nil, StringArray{}},
		{"bytes", []byte(`["go","sql"]`), StringArray{"go", "sql"}},
		{"string", `["rust"]`, StringArray{"rust"}},
		{"empty", []byte(`[]`), StringArray{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringArray
			require.NoError(t, s.Scan(tt.input))
			assert.Equal(t, tt.want, s)
		})
	}

	var s StringArray
	assert.Error(t, s.Scan(42))

	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = StringArray{"go"}.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte(`["go"]`), v)
}

func TestJSONArray_NeverNil(t *testing.T) {
	assert.NotNil(t, jsonArray(nil))
	assert.Equal(t, StringArray{"a"}, jsonArray([]string{"a"}))
}
