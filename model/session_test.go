package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "short query unchanged",
			query: "hello",
			want:  "hello",
		},
		{
			name:  "exactly fifty runes unchanged",
			query: strings.Repeat("a", 50),
			want:  strings.Repeat("a", 50),
		},
		{
			name:  "long query truncated with ellipsis",
			query: strings.Repeat("a", 51),
			want:  strings.Repeat("a", 50) + "…",
		},
		{
			name:  "multibyte runes counted as runes",
			query: strings.Repeat("查", 60),
			want:  strings.Repeat("查", 50) + "…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeQuery(tt.query))
		})
	}
}
