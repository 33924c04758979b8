package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed phrases/*.txt sql/*.sql
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
		out = append(out, s)
	}
	return out, sc.Err()
}

// HigherPhrases are spoken when a guess is below the target. Each contains one %d.
func HigherPhrases() ([]string, error) {
	return readLines("phrases/higher.txt")
}

// LowerPhrases are spoken when a guess is above the target. Each contains one %d.
func LowerPhrases() ([]string, error) {
	return readLines("phrases/lower.txt")
}

// Migrations returns the embedded SQL migrations rooted at their directory,
// so names read "001_sessions.sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err) // the directory is embedded above
	}
	return sub
}
