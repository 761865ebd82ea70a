package prism

import (
	"regexp"
	"strings"
)

var labelDeclLine = regexp.MustCompile(`^[a-z0-9]+:$`)

// ScanLabels performs a one-pass label pre-scan over already preprocessed
// source: any line consisting solely of [a-z0-9]+: contributes a mapping from the
// label name to its 0-based line index. A duplicate declaration overwrites
// the earlier one: the last declaration of a given name wins.
func ScanLabels(src string) map[string]int {
	labels := make(map[string]int)
	for i, line := range strings.Split(src, "\n") {
		if !labelDeclLine.MatchString(line) {
			continue
		}
		name := strings.TrimSuffix(line, ":")
		labels[name] = i
	}
	return labels
}
