package prism

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanLabelsBasic(t *testing.T) {
	src := "select abs 0\nloop:\nupdate 1\nsleep ms 10"
	labels := ScanLabels(src)
	assert.Equal(t, map[string]int{"loop": 1}, labels)
}

func TestScanLabelsLastDeclarationWins(t *testing.T) {
	src := "loop:\nupdate 0\nloop:\nupdate 1"
	labels := ScanLabels(src)
	assert.Equal(t, 2, labels["loop"])
}
