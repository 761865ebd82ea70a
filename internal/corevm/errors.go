package corevm

import "fmt"

// RawInstruction is the decoded (opcode, option, value) triple prior to
// type-tagging the option field against its opcode's enum domain.
type RawInstruction struct {
	Opcode byte
	Option byte
	Value  byte
}

// InvalidInstructionError reports a 16-bit word whose opcode is unknown or
// whose option field does not belong to the domain required by its opcode.
type InvalidInstructionError struct {
	Raw RawInstruction
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("invalid instruction: opcode=0x%02x option=0x%02x value=0x%02x", e.Raw.Opcode, e.Raw.Option, e.Raw.Value)
}

// InvalidOptionError reports an instruction whose option does not match the
// enum domain of its opcode, detected dynamically by the interpreter (the
// "option is re-checked at execution time, not just at decode time" rule).
type InvalidOptionError struct {
	Opcode Opcode
	Option byte
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option 0x%02x for opcode %v", e.Option, e.Opcode)
}

// InvalidVariableCodeError reports a LoadX/LoadY(Variable) whose selector
// value does not name a known variable.
type InvalidVariableCodeError struct {
	Value byte
}

func (e *InvalidVariableCodeError) Error() string {
	return fmt.Sprintf("invalid variable code: 0x%02x", e.Value)
}

// ErrInterpreterException is returned by the Exception opcode.
var ErrInterpreterException = fmt.Errorf("interpreter exception")

// OutOfRangeError reports a selection or range endpoint addressing a pixel
// beyond the framebuffer's length.
type OutOfRangeError struct {
	Index      byte
	BufferSize byte
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range for buffer of size %d", e.Index, e.BufferSize)
}
