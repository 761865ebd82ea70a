package prism

import (
	"encoding/binary"

	"github.com/prismvm/newton/internal/corevm"
)

// Emit packs instructions into their wire form: the concatenation of
// big-endian 16-bit words in declaration order. No header, no trailer, no
// padding.
func Emit(instrs []corevm.Instruction) ([]byte, error) {
	out := make([]byte, 0, len(instrs)*2)
	for _, i := range instrs {
		word, err := corevm.Encode(i)
		if err != nil {
			return nil, err
		}
		out = binary.BigEndian.AppendUint16(out, word)
	}
	return out, nil
}

// Assemble runs the full front end over raw Prism source: preprocess,
// scan labels, lex, parse, emit.
func Assemble(raw string) ([]byte, []corevm.Instruction, error) {
	src, err := Preprocess(raw)
	if err != nil {
		return nil, nil, err
	}
	labels := ScanLabels(src)
	tokens, err := Lex(src)
	if err != nil {
		return nil, nil, err
	}
	instrs, err := Parse(tokens, labels)
	if err != nil {
		return nil, nil, err
	}
	bin, err := Emit(instrs)
	if err != nil {
		return nil, nil, err
	}
	return bin, instrs, nil
}
