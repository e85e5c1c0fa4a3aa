// Package assets embeds the fallback dictionary shipped with the server.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed words.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// DefaultWords returns the embedded word list. It is small and meant for
// local development; point WORDS_FILE at a full list for real play.
func DefaultWords() ([]string, error) {
	return readLines("words.txt")
}
