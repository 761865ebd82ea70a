// Package runtime drives a corevm.Interpreter over a channel of decoded
// wire words under a single-owner goroutine design: exactly one goroutine
// (this package's Run) ever touches the interpreter.
package runtime

import (
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/prismvm/newton/internal/corevm"
)

// pollInterval bounds how long Run can block on an empty input channel
// before re-checking cancellation, mirroring the original emulator's
// try_recv spin loop rather than a hard blocking receive.
const pollInterval = 50 * time.Millisecond

// FrameSink is the minimal interface a presentation collaborator
// implements to receive published snapshots; how it renders or forwards
// them is left entirely up to the implementation.
type FrameSink interface {
	Publish(snapshot []corevm.Pixel)
}

// LogSink is the only FrameSink shipped here: it logs snapshots via glog
// rather than rendering them, since there is no graphical front end.
type LogSink struct{}

// Publish logs the snapshot length and contents at Info level.
func (LogSink) Publish(snapshot []corevm.Pixel) {
	glog.Infof("update: %d pixels %v", len(snapshot), snapshot)
}

// Engine is the single owner of one corevm.Interpreter. It consumes
// decoded words in arrival order, decodes them, steps the interpreter,
// and on Update publishes to its FrameSink; on Sleep it blocks its own
// goroutine for the requested duration.
type Engine struct {
	interp *corevm.Interpreter
	sink   FrameSink
	cancel *atomic.Bool
}

// NewEngine builds an Engine over a fresh interpreter of the given buffer
// size, publishing through sink. cancel may be nil; pass the same flag
// given to the paired transport.FrameReader so both sides of the
// listener/engine pair observe one shutdown signal.
func NewEngine(bufferSize byte, sink FrameSink, cancel *atomic.Bool) *Engine {
	return &Engine{interp: corevm.NewInterpreter(bufferSize), sink: sink, cancel: cancel}
}

// Interpreter exposes the underlying interpreter. It is safe to read only
// while no call to Run is in flight; Engine itself does no synchronization.
func (e *Engine) Interpreter() *corevm.Interpreter { return e.interp }

// Run consumes words until cancellation or the channel closes. Decode and
// interpreter errors are logged and execution continues: a single bad
// instruction does not abort the stream.
func (e *Engine) Run(words <-chan uint16) error {
	for {
		if e.cancelled() {
			return nil
		}
		select {
		case word, ok := <-words:
			if !ok {
				return nil
			}
			e.stepWord(word)
		case <-time.After(pollInterval):
		}
	}
}

func (e *Engine) stepWord(word uint16) {
	instr, err := corevm.Decode(word)
	if err != nil {
		glog.Errorf("decode: %v", err)
		return
	}
	action, err := e.interp.Step(instr)
	if err != nil {
		glog.Errorf("step %v: %v", instr.Opcode, err)
		return
	}
	switch action.Kind {
	case corevm.ActionUpdate:
		e.sink.Publish(e.interp.Snapshot())
	case corevm.ActionSleep:
		time.Sleep(action.Sleep)
	}
}

func (e *Engine) cancelled() bool {
	return e.cancel != nil && e.cancel.Load()
}
