package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower", "go", "go"},
		{"upper", "GO", "go"},
		{"mixed with spaces", "  Machine   Learning ", "machine learning"},
		{"empty", "   ", ""},
		{"fullwidth", "ＳＱＬ", "sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestClean(t *testing.T) {
	got := Clean([]string{"Go", " go ", "", "SQL", "Docker  Compose", "sql"})
	assert.Equal(t, []string{"Go", "SQL", "Docker Compose"}, got)
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name        string
		have        []string
		required    []string
		wantMatched []string
		wantTotal   int
	}{
		{"full match case insensitive", []string{"go", "SQL"}, []string{"Go", "sql"}, []string{"Go", "sql"}, 2},
		{"partial", []string{"go"}, []string{"Go", "Rust"}, []string{"Go"}, 2},
		{"duplicate requirement counted once", []string{"go"}, []string{"Go", "GO"}, []string{"Go"}, 1},
		{"no requirements", []string{"go"}, nil, nil, 0},
		{"no skills", nil, []string{"Go"}, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, total := Overlap(tt.have, tt.required)
			assert.Equal(t, tt.wantMatched, matched)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}
