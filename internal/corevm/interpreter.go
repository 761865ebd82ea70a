package corevm

import "time"

// ActionKind tags the three possible effects of a single interpreter step.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionUpdate
	ActionSleep
)

// Action is the effect produced by Step: nothing, a snapshot publish, or a
// request that the caller suspend for Sleep before fetching the next word.
// The interpreter itself never blocks: it only reports the duration, and
// leaves actually waiting to the caller.
type Action struct {
	Kind  ActionKind
	Sleep time.Duration
}

var sleepUnitMillis = map[TimeOption]uint64{
	TimeMs:   1,
	TimeSec:  1000,
	TimeMin:  60_000,
	TimeHour: 3_600_000,
}

// Interpreter is the single-owner state machine over a fixed-size
// framebuffer, its published snapshot, the selection/range cursors, the
// X/Y registers, and the read-only Variables record. It is not safe for
// concurrent use: exactly one goroutine may call Step at a time.
type Interpreter struct {
	fb        *Framebuffer
	snapshot  []Pixel
	variables Variables
	registers Registers
	cursors   Cursors
}

// NewInterpreter builds a fresh interpreter over a buffer of size n.
// Registers start at (version, n) and the framebuffer/snapshot start zeroed.
func NewInterpreter(n byte) *Interpreter {
	vars := Variables{Version: LibraryVersion, BufferSize: n}
	fb := NewFramebuffer(n)
	return &Interpreter{
		fb:        fb,
		snapshot:  fb.Snapshot(),
		variables: vars,
		registers: Registers{X: vars.Version, Y: vars.BufferSize},
	}
}

// BufferSize returns N.
func (ip *Interpreter) BufferSize() byte { return ip.fb.Len() }

// Registers returns the current X/Y register values.
func (ip *Interpreter) Registers() Registers { return ip.registers }

// Cursors returns the current selection/range state.
func (ip *Interpreter) Cursors() Cursors { return ip.cursors }

// Snapshot returns the pixel state published by the most recent Update.
func (ip *Interpreter) Snapshot() []Pixel {
	out := make([]Pixel, len(ip.snapshot))
	copy(out, ip.snapshot)
	return out
}

func (ip *Interpreter) mapRelative(v byte) byte {
	n := ip.fb.Len()
	return byte((uint16(v) * uint16(n-1)) / 255)
}

func (ip *Interpreter) checkIndex(idx byte) error {
	if idx >= ip.fb.Len() {
		return &OutOfRangeError{Index: idx, BufferSize: ip.fb.Len()}
	}
	return nil
}

// Step decodes nothing; it executes an already-decoded Instruction and
// returns the resulting Action. State mutates before return except on
// failure: a rejected instruction leaves the interpreter unchanged.
func (ip *Interpreter) Step(i Instruction) (Action, error) {
	kind, ok := KindOf(i.Opcode)
	if !ok || !validOption(kind, i.Option) {
		return Action{}, &InvalidOptionError{Opcode: i.Opcode, Option: i.Option}
	}

	switch i.Opcode {
	case OpClear:
		ip.fb.Clear()
		return Action{Kind: ActionNone}, nil

	case OpUpdate:
		ip.snapshot = ip.fb.Snapshot()
		return Action{Kind: ActionUpdate}, nil

	case OpSleep:
		ms := sleepUnitMillis[TimeOption(i.Option)] * uint64(i.Value)
		return Action{Kind: ActionSleep, Sleep: time.Duration(ms) * time.Millisecond}, nil

	case OpSelect:
		idx := i.Value
		if SelectOption(i.Option) == SelectRelative {
			idx = ip.mapRelative(i.Value)
		}
		if err := ip.checkIndex(idx); err != nil {
			return Action{}, err
		}
		ip.cursors.Selection = idx
		return Action{Kind: ActionNone}, nil

	case OpRange:
		idx := i.Value
		opt := RangeOption(i.Option)
		if opt == RangeRelativeStart || opt == RangeRelativeEnd {
			idx = ip.mapRelative(i.Value)
		}
		if err := ip.checkIndex(idx); err != nil {
			return Action{}, err
		}
		switch opt {
		case RangeAbsoluteStart, RangeRelativeStart:
			ip.cursors.RangeStart = idx
		case RangeAbsoluteEnd, RangeRelativeEnd:
			ip.cursors.RangeEnd = idx
		}
		return Action{Kind: ActionNone}, nil

	case OpSet:
		p := ip.fb.At(ip.cursors.Selection)
		ip.fb.Set(ip.cursors.Selection, p.WithChannel(ColorOption(i.Option), i.Value))
		return Action{Kind: ActionNone}, nil

	case OpFill:
		channel := ColorOption(i.Option)
		for idx := int(ip.cursors.RangeStart); idx <= int(ip.cursors.RangeEnd); idx++ {
			p := ip.fb.At(byte(idx))
			ip.fb.Set(byte(idx), p.WithChannel(channel, i.Value))
		}
		return Action{Kind: ActionNone}, nil

	case OpBlur:
		applyBlur(ip.fb, ip.cursors.RangeStart, ip.cursors.RangeEnd, i.Value)
		return Action{Kind: ActionNone}, nil

	case OpLoadX, OpLoadY:
		v, err := ip.loadValue(LoadOption(i.Option), i.Value)
		if err != nil {
			return Action{}, err
		}
		if i.Opcode == OpLoadX {
			ip.registers.X = v
		} else {
			ip.registers.Y = v
		}
		return Action{Kind: ActionNone}, nil

	case OpIgnore:
		return Action{Kind: ActionNone}, nil

	case OpException:
		return Action{}, ErrInterpreterException

	default:
		return Action{}, &InvalidInstructionError{Raw: RawInstruction{Opcode: byte(i.Opcode), Option: i.Option, Value: i.Value}}
	}
}

func (ip *Interpreter) loadValue(opt LoadOption, value byte) (byte, error) {
	if opt == LoadVariable {
		return ip.variables.Lookup(value)
	}
	p := ip.fb.At(ip.cursors.Selection)
	switch opt {
	case LoadRed:
		return p.Red, nil
	case LoadGreen:
		return p.Green, nil
	case LoadBlue:
		return p.Blue, nil
	default:
		return 0, &InvalidVariableCodeError{Value: value}
	}
}
