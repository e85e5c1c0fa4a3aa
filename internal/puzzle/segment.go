package puzzle

import (
	"fmt"
	"math/rand/v2"
)

// Segment cuts word into SegmentsPerWord contiguous pieces, each between
// MinSegmentLen and MaxSegmentLen long. Boundaries are drawn left to right;
// each draw is clamped so the pieces still to come can always be filled.
//
// word must be MinWordLen..MaxWordLen bytes long. Callers filter candidates
// up front, so anything else is a bug and panics.
func Segment(word string, rng *rand.Rand) []string {
	n := len(word)
	if n < MinWordLen || n > MaxWordLen {
		panic(fmt.Sprintf("puzzle: cannot segment %q (length %d, want %d..%d)", word, n, MinWordLen, MaxWordLen))
	}

	segs := make([]string, 0, SegmentsPerWord)
	pos := 0
	for i := 0; i < SegmentsPerWord-1; i++ {
		remaining := n - pos
		left := SegmentsPerWord - i - 1
		maxLen := min(MaxSegmentLen, remaining-MinSegmentLen*left)
		minLen := max(MinSegmentLen, remaining-MaxSegmentLen*left)
		segLen := minLen + rng.IntN(maxLen-minLen+1)
		segs = append(segs, word[pos:pos+segLen])
		pos += segLen
	}
	return append(segs, word[pos:])
}
