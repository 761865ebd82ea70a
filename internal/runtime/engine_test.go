package runtime

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prismvm/newton/internal/corevm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	published [][]corevm.Pixel
}

func (s *recordingSink) Publish(snapshot []corevm.Pixel) {
	s.published = append(s.published, snapshot)
}

func mustEncode(t *testing.T, i corevm.Instruction) uint16 {
	t.Helper()
	w, err := corevm.Encode(i)
	require.NoError(t, err)
	return w
}

func TestEnginePublishesOnUpdate(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(4, sink, nil)

	words := make(chan uint16, 8)
	words <- mustEncode(t, corevm.Select(corevm.SelectAbsolute, 1))
	words <- mustEncode(t, corevm.Set(corevm.ColorGreen, 0x77))
	words <- mustEncode(t, corevm.Update(0))
	close(words)

	err := engine.Run(words)
	require.NoError(t, err)

	require.Len(t, sink.published, 1)
	assert.Equal(t, byte(0x77), sink.published[0][1].Green)
}

func TestEngineContinuesAfterStepError(t *testing.T) {
	sink := &recordingSink{}
	engine := NewEngine(4, sink, nil)

	words := make(chan uint16, 8)
	words <- mustEncode(t, corevm.Exception(0)) // logged, execution continues
	words <- mustEncode(t, corevm.Update(0))
	close(words)

	err := engine.Run(words)
	require.NoError(t, err)
	assert.Len(t, sink.published, 1)
}

func TestEngineStopsWhenCancelled(t *testing.T) {
	var cancel atomic.Bool
	cancel.Store(true)
	sink := &recordingSink{}
	engine := NewEngine(4, sink, &cancel)

	words := make(chan uint16)
	done := make(chan error, 1)
	go func() { done <- engine.Run(words) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not observe cancellation")
	}
}
