package prism

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessDropsCommentsAndBlankLines(t *testing.T) {
	raw := "  Update #FF  \n; a comment\n\n  CLEAR 0\n"
	got, err := Preprocess(raw)
	require.NoError(t, err)
	assert.Equal(t, "update #ff\nclear 0", got)
}

func TestPreprocessEmptySourceFails(t *testing.T) {
	_, err := Preprocess("\n; only comments\n   \n")
	assert.ErrorIs(t, err, ErrEmptySource)
}
