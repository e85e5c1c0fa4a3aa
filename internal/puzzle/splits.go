package puzzle

import "iter"

// AllSplits lazily yields every way to cut word into consecutive chunks of
// MinSegmentLen..MaxSegmentLen bytes. Partitions come out in depth-first
// order, shorter chunks first. The slice passed to yield is reused between
// iterations; copy it to keep it.
func AllSplits(word string) iter.Seq[[]string] {
	return Splits(word, nil)
}

// Splits is AllSplits restricted to partitions whose every chunk passes keep.
// Chunks failing keep are pruned before descending, so the yielded sequence is
// exactly the matching subsequence of AllSplits. A nil keep accepts everything.
func Splits(word string, keep func(string) bool) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		path := make([]string, 0, len(word)/MinSegmentLen+1)
		var dfs func(start int) bool
		dfs = func(start int) bool {
			if start == len(word) {
				return yield(path)
			}
			for l := MinSegmentLen; l <= MaxSegmentLen && start+l <= len(word); l++ {
				chunk := word[start : start+l]
				if keep != nil && !keep(chunk) {
					continue
				}
				path = append(path, chunk)
				ok := dfs(start + l)
				path = path[:len(path)-1]
				if !ok {
					return false
				}
			}
			return true
		}
		if len(word) > 0 {
			dfs(0)
		}
	}
}
