// internal/words/words.go
//
// Dictionary management for puzzle generation and scoring.
//
// Responsibilities:
//   - Hold the immutable word list (sorted) and a set for membership checks.
//   - Load the list from a file named by the caller, or fall back to the
//     embedded default list.
//   - Supply the length-filtered candidate list quartile words are drawn from.
//
// Sources (chosen by file extension in Load):
//   - ".txt" (or anything unrecognised): one word per line, '#' comments.
//   - ".json": an object keyed by word, e.g. {"apple":1,"banana":1}.
//   - ".db", ".sqlite", ".sqlite3": a SQLite file with a words(word) table.
//
// Constraints:
//   • Words are normalised to lowercase and must be alphabetic (a–z).
//   • Duplicates are dropped.
//   • A Dictionary is never mutated after construction.

package words

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/quartiles/assets"
)

var ErrEmpty = errors.New("words: dictionary is empty")

// Dictionary is a read-only word list.
type Dictionary struct {
	words []string            // sorted, unique, lowercase
	set   map[string]struct{} // same words, for lookups
}

// New builds a Dictionary from raw words, normalising and de-duplicating them.
// Entries that are not purely alphabetic are skipped.
func New(list []string) *Dictionary {
	set := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, raw := range list {
		w := normalize(raw)
		if w == "" || !isAlpha(w) {
			continue
		}
		if _, dup := set[w]; dup {
			continue
		}
		set[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return &Dictionary{words: out, set: set}
}

// Contains reports whether w is in the dictionary, ignoring case.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.set[normalize(w)]
	return ok
}

// Words returns the sorted word list. Callers must not modify it.
func (d *Dictionary) Words() []string { return d.words }

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.words) }

// Candidates returns the words whose length lies in [minLen, maxLen],
// in dictionary order.
func (d *Dictionary) Candidates(minLen, maxLen int) []string {
	var out []string
	for _, w := range d.words {
		if len(w) >= minLen && len(w) <= maxLen {
			out = append(out, w)
		}
	}
	return out
}

// Load reads a dictionary from path, or the embedded default list when path
// is empty. Returns ErrEmpty if nothing usable was read.
func Load(ctx context.Context, path string) (*Dictionary, error) {
	var (
		list []string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case path == "":
		log.Info().Msg("no word file configured, using embedded default list")
		list, err = assets.DefaultWords()
	case ext == ".json":
		list, err = readJSONFile(path)
	case ext == ".db" || ext == ".sqlite" || ext == ".sqlite3":
		list, err = readSQLite(ctx, path)
	default:
		list, err = readWordFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("words: load %s: %w", path, err)
	}

	d := New(list)
	if d.Len() == 0 {
		return nil, ErrEmpty
	}
	log.Info().Str("source", path).Int("words", d.Len()).Msg("dictionary loaded")
	return d, nil
}

// readWordFile loads one word per line, skipping blanks and '#' comments.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// readJSONFile loads the keys of a JSON object. Values are ignored.
func readJSONFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	out := make([]string, 0, len(obj))
	for w := range obj {
		out = append(out, w)
	}
	return out, nil
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
