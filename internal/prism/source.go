package prism

import "strings"

// Preprocess normalizes raw Prism source: lowercase, trim each line, drop
// lines that are empty or begin with ';', rejoin with "\n". Fails with
// ErrEmptySource if nothing survives.
func Preprocess(raw string) (string, error) {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.ToLower(line))
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return "", ErrEmptySource
	}
	return strings.Join(kept, "\n"), nil
}
