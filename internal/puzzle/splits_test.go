package puzzle_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/quartiles/internal/puzzle"
)

func collect(word string, keep func(string) bool) [][]string {
	var out [][]string
	for split := range puzzle.Splits(word, keep) {
		out = append(out, slices.Clone(split))
	}
	return out
}

func TestAllSplits_Order(t *testing.T) {
	var got [][]string
	for split := range puzzle.AllSplits("abcdef") {
		got = append(got, slices.Clone(split))
	}

	assert.Equal(t, [][]string{
		{"ab", "cd", "ef"},
		{"ab", "cdef"},
		{"abc", "def"},
		{"abcd", "ef"},
	}, got)
}

func TestAllSplits_Counts(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{word: "", want: 0},
		{word: "a", want: 0},
		{word: "ab", want: 1},
		{word: "abc", want: 1},
		{word: "abcd", want: 2},
		{word: "abcde", want: 2},
		{word: "abcdef", want: 4},
		{word: "abcdefg", want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Len(t, collect(tt.word, nil), tt.want)
		})
	}
}

func TestAllSplits_EverySplitIsValid(t *testing.T) {
	for _, word := range []string{"wonderful", "grapefruit", "extraordinarily", "on", "onit"} {
		n := 0
		for split := range puzzle.AllSplits(word) {
			n++
			assert.Equal(t, word, strings.Join(split, ""))
			for _, chunk := range split {
				assert.GreaterOrEqual(t, len(chunk), puzzle.MinSegmentLen)
				assert.LessOrEqual(t, len(chunk), puzzle.MaxSegmentLen)
			}
		}
		assert.Positive(t, n, "word %q has a valid split", word)
	}
}

func TestAllSplits_StopsEarly(t *testing.T) {
	n := 0
	for range puzzle.AllSplits("extraordinarily") {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestSplits_KeepPrunes(t *testing.T) {
	allowed := map[string]bool{"ab": true, "cdef": true, "abc": true, "def": true}
	got := collect("abcdef", func(s string) bool { return allowed[s] })

	assert.Equal(t, [][]string{
		{"ab", "cdef"},
		{"abc", "def"},
	}, got)
}

func TestSplits_KeepMatchesFilteredAllSplits(t *testing.T) {
	allowed := map[string]bool{"won": true, "de": true, "rf": true, "ul": true, "wo": true, "nde": true, "rful": true}
	keep := func(s string) bool { return allowed[s] }

	var want [][]string
	for split := range puzzle.AllSplits("wonderful") {
		if !slices.ContainsFunc(split, func(s string) bool { return !keep(s) }) {
			want = append(want, slices.Clone(split))
		}
	}

	assert.Equal(t, want, collect("wonderful", keep))
}
