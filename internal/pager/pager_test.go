package pager

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		requested int
		size      int
		want      Page
	}{
		{
			name:  "first page of several",
			total: 10, requested: 1, size: 4,
			want: Page{Number: 1, Offset: 0, Limit: 4, LastPage: 3, HasPrev: false, HasNext: true},
		},
		{
			name:  "middle page",
			total: 10, requested: 2, size: 4,
			want: Page{Number: 2, Offset: 4, Limit: 4, LastPage: 3, HasPrev: true, HasNext: true},
		},
		{
			name:  "last page",
			total: 10, requested: 3, size: 4,
			want: Page{Number: 3, Offset: 8, Limit: 4, LastPage: 3, HasPrev: true, HasNext: false},
		},
		{
			name:  "page zero clamps to one",
			total: 10, requested: 0, size: 4,
			want: Page{Number: 1, Offset: 0, Limit: 4, LastPage: 3, HasPrev: false, HasNext: true},
		},
		{
			name:  "negative page clamps to one",
			total: 10, requested: -5, size: 4,
			want: Page{Number: 1, Offset: 0, Limit: 4, LastPage: 3, HasPrev: false, HasNext: true},
		},
		{
			name:  "overshoot clamps to last page",
			total: 10, requested: 999, size: 4,
			want: Page{Number: 3, Offset: 8, Limit: 4, LastPage: 3, HasPrev: true, HasNext: false},
		},
		{
			name:  "empty collection",
			total: 0, requested: 1, size: 4,
			want: Page{Number: 1, Offset: 0, Limit: 4, LastPage: 1, HasPrev: false, HasNext: false},
		},
		{
			name:  "empty collection with overshoot",
			total: 0, requested: 7, size: 4,
			want: Page{Number: 1, Offset: 0, Limit: 4, LastPage: 1, HasPrev: false, HasNext: false},
		},
		{
			name:  "exactly one full page",
			total: 4, requested: 1, size: 4,
			want: Page{Number: 1, Offset: 0, Limit: 4, LastPage: 1, HasPrev: false, HasNext: false},
		},
		{
			name:  "one element past a full page",
			total: 5, requested: 2, size: 4,
			want: Page{Number: 2, Offset: 4, Limit: 4, LastPage: 2, HasPrev: true, HasNext: false},
		},
		{
			name:  "degenerate page size defends to one",
			total: 3, requested: 2, size: 0,
			want: Page{Number: 2, Offset: 1, Limit: 1, LastPage: 3, HasPrev: true, HasNext: true},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Resolve(tt.total, tt.requested, tt.size))
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	first := Resolve(10, 2, 4)
	second := Resolve(10, 2, 4)
	assert.Equal(t, first, second)
}

func TestEllipsis(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{
			name: "shorter than max unchanged",
			text: "short",
			max:  40,
			want: "short",
		},
		{
			name: "exactly max unchanged",
			text: strings.Repeat("a", 40),
			max:  40,
			want: strings.Repeat("a", 40),
		},
		{
			name: "one over max truncates",
			text: strings.Repeat("a", 41),
			max:  40,
			want: strings.Repeat("a", 37) + "...",
		},
		{
			name: "45 chars keeps first 37",
			text: strings.Repeat("b", 45),
			max:  40,
			want: strings.Repeat("b", 37) + "...",
		},
		{
			name: "multibyte runes counted as characters",
			text: strings.Repeat("ё", 41),
			max:  40,
			want: strings.Repeat("ё", 37) + "...",
		},
		{
			name: "empty string",
			text: "",
			max:  40,
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Ellipsis(tt.text, tt.max)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), tt.max)
		})
	}
}
