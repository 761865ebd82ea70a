package prism

import (
	"strconv"
	"strings"

	"github.com/prismvm/newton/internal/corevm"
)

// addrKind tags how an operand token resolved: to an assemble-time
// constant (Immediate, from a Number or a label reference) or to a
// register (Indirect, from a Register or GpRegister token). Only
// Immediate operands are accepted anywhere a value is ultimately encoded;
// Indirect is tracked so the array homogeneity rule can be enforced before
// reporting InvalidType.
type addrKind int

const (
	addrImmediate addrKind = iota
	addrIndirect
)

type operand struct {
	kind  addrKind
	value byte
}

// lineParser consumes a single preprocessed line's tokens (everything up
// to, but excluding, its terminating Newline) into zero or more
// instructions.
type lineParser struct {
	toks   []Token
	pos    int
	line   int
	labels map[string]int
}

func (p *lineParser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *lineParser) peek() (Token, bool) {
	if p.atEnd() {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *lineParser) next() (Token, error) {
	t, ok := p.peek()
	if !ok {
		return Token{}, &ParseError{Kind: UnexpectedEOF, Line: p.line, Detail: "unexpected end of line"}
	}
	p.pos++
	return t, nil
}

// expectKeyword consumes a Text token and requires it be one of want.
func (p *lineParser) expectKeyword(want ...string) (string, error) {
	t, err := p.next()
	if err != nil {
		return "", err
	}
	if t.Kind != TokText {
		return "", p.unexpected(t)
	}
	for _, w := range want {
		if t.Text == w {
			return t.Text, nil
		}
	}
	return "", &ParseError{Kind: UnexpectedToken, Line: p.line, Detail: "expected one of " + strings.Join(want, "|") + ", got " + t.Text}
}

func (p *lineParser) unexpected(t Token) error {
	return &ParseError{Kind: UnexpectedToken, Line: p.line, Detail: "unexpected token " + t.Kind.String()}
}

// valueOperand resolves a <value> operand: a Number, or a Text
// token resolved through the label table to its 0-based line index.
func (p *lineParser) valueOperand() (byte, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	switch t.Kind {
	case TokNumber:
		return t.Value, nil
	case TokText:
		idx, ok := p.labels[t.Text]
		if !ok {
			return 0, &ParseError{Kind: UndefinedLabel, Line: p.line, Detail: t.Text}
		}
		return byte(idx), nil
	default:
		return 0, p.unexpected(t)
	}
}

// registerOperand consumes a $rx/$ry Register token, returning which of
// LoadX/LoadY it names.
func (p *lineParser) registerOperand() (corevm.Opcode, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	if t.Kind != TokRegister {
		return 0, p.unexpected(t)
	}
	switch t.Text {
	case "rx":
		return corevm.OpLoadX, nil
	case "ry":
		return corevm.OpLoadY, nil
	default:
		return 0, &ParseError{Kind: UnknownRegister, Line: p.line, Detail: t.Text}
	}
}

func (p *lineParser) expectEndOfLine() error {
	if !p.atEnd() {
		t, _ := p.peek()
		return p.unexpected(t)
	}
	return nil
}

// arrayOperand parses "( op op ... )" and returns the element operands in
// order. The homogeneity and sizing rules (InvalidArraySize,
// MixedArrayAddressing) are enforced by the caller against the mnemonic's
// expected arity, since "array" alone doesn't know if it's a Range pair or
// a Color triple.
func (p *lineParser) arrayOperand() ([]operand, error) {
	open, err := p.next()
	if err != nil {
		return nil, err
	}
	if open.Kind != TokArrayBegin {
		return nil, p.unexpected(open)
	}
	var elems []operand
	for {
		t, ok := p.peek()
		if !ok {
			return nil, &ParseError{Kind: UnexpectedEOF, Line: p.line, Detail: "unterminated array"}
		}
		if t.Kind == TokArrayEnd {
			p.pos++
			return elems, nil
		}
		switch t.Kind {
		case TokNumber:
			p.pos++
			elems = append(elems, operand{kind: addrImmediate, value: t.Value})
		case TokText:
			idx, ok := p.labels[t.Text]
			if !ok {
				return nil, &ParseError{Kind: UndefinedLabel, Line: p.line, Detail: t.Text}
			}
			p.pos++
			elems = append(elems, operand{kind: addrImmediate, value: byte(idx)})
		case TokRegister, TokGpRegister:
			p.pos++
			elems = append(elems, operand{kind: addrIndirect})
		default:
			return nil, p.unexpected(t)
		}
	}
}

// resolveImmediateArray enforces the homogeneity/typing/size rules for an
// array already parsed by arrayOperand, given the arity wanted by the
// calling mnemonic (2 for Range, 3 for Color).
func (p *lineParser) resolveImmediateArray(elems []operand, wantLen int) ([]byte, error) {
	if len(elems) != wantLen {
		return nil, &ParseError{Kind: InvalidArraySize, Line: p.line, Detail: strconv.Itoa(len(elems))}
	}
	kind := elems[0].kind
	for _, e := range elems {
		if e.kind != kind {
			return nil, &ParseError{Kind: MixedArrayAddressing, Line: p.line, Detail: "array elements must share one addressing kind"}
		}
	}
	if kind != addrImmediate {
		return nil, &ParseError{Kind: InvalidType, Line: p.line, Detail: "register-addressed arrays cannot supply a Range or Color operand at assemble time"}
	}
	out := make([]byte, len(elems))
	for i, e := range elems {
		out[i] = e.value
	}
	return out, nil
}

// parseMnemonic dispatches on the already-consumed Text token naming the
// instruction, returning the instructions that line expands to (usually
// one; the array sugar forms expand to two or three).
func (p *lineParser) parseMnemonic(mnemonic string) ([]corevm.Instruction, error) {
	switch mnemonic {
	case "update":
		v, err := p.valueOperand()
		return single(corevm.Update(v)), err
	case "clear":
		v, err := p.valueOperand()
		return single(corevm.Clear(v)), err
	case "ignore":
		v, err := p.valueOperand()
		return single(corevm.Ignore(v)), err
	case "exception":
		v, err := p.valueOperand()
		return single(corevm.Exception(v)), err

	case "select":
		mode, err := p.expectKeyword("abs", "rel")
		if err != nil {
			return nil, err
		}
		v, err := p.valueOperand()
		if err != nil {
			return nil, err
		}
		opt := corevm.SelectAbsolute
		if mode == "rel" {
			opt = corevm.SelectRelative
		}
		return single(corevm.Select(opt, v)), nil

	case "range":
		return p.parseRange()

	case "set":
		c, err := p.colorKeyword()
		if err != nil {
			return nil, err
		}
		v, err := p.valueOperand()
		if err != nil {
			return nil, err
		}
		return single(corevm.Set(c, v)), nil

	case "fill":
		return p.parseFill()

	case "blur":
		mode, err := p.expectKeyword("all", "range")
		if err != nil {
			return nil, err
		}
		v, err := p.valueOperand()
		if err != nil {
			return nil, err
		}
		opt := corevm.EffectApplyAll
		if mode == "range" {
			opt = corevm.EffectApplyRange
		}
		return single(corevm.Blur(opt, v)), nil

	case "sleep":
		unit, err := p.delayKeyword()
		if err != nil {
			return nil, err
		}
		v, err := p.valueOperand()
		if err != nil {
			return nil, err
		}
		var opt corevm.TimeOption
		switch unit {
		case "ms":
			opt = corevm.TimeMs
		case "sec":
			opt = corevm.TimeSec
		case "min":
			opt = corevm.TimeMin
		case "hrs":
			opt = corevm.TimeHour
		}
		return single(corevm.Sleep(opt, v)), nil

	case "load":
		op, err := p.registerOperand()
		if err != nil {
			return nil, err
		}
		loadOpt, err := p.loadKeyword()
		if err != nil {
			return nil, err
		}
		v, err := p.valueOperand()
		if err != nil {
			return nil, err
		}
		if op == corevm.OpLoadX {
			return single(corevm.LoadX(loadOpt, v)), nil
		}
		return single(corevm.LoadY(loadOpt, v)), nil

	default:
		return nil, &ParseError{Kind: UnrecognizedInstruction, Line: p.line, Detail: mnemonic}
	}
}

func (p *lineParser) colorKeyword() (corevm.ColorOption, error) {
	kw, err := p.expectKeyword("red", "green", "blue")
	if err != nil {
		return 0, err
	}
	switch kw {
	case "red":
		return corevm.ColorRed, nil
	case "green":
		return corevm.ColorGreen, nil
	default:
		return corevm.ColorBlue, nil
	}
}

// delayKeyword consumes a sleep unit. Unlike expectKeyword, a mismatch is
// reported as InvalidDelayType rather than the generic UnexpectedToken,
// since the delay vocabulary is its own failure category.
func (p *lineParser) delayKeyword() (string, error) {
	t, err := p.next()
	if err != nil {
		return "", err
	}
	detail := t.Kind.String()
	if t.Kind == TokText {
		switch t.Text {
		case "ms", "sec", "min", "hrs":
			return t.Text, nil
		}
		detail = t.Text
	}
	return "", &ParseError{Kind: InvalidDelayType, Line: p.line, Detail: detail}
}

func (p *lineParser) loadKeyword() (corevm.LoadOption, error) {
	kw, err := p.expectKeyword("variable", "red", "green", "blue")
	if err != nil {
		return 0, err
	}
	switch kw {
	case "variable":
		return corevm.LoadVariable, nil
	case "red":
		return corevm.LoadRed, nil
	case "green":
		return corevm.LoadGreen, nil
	default:
		return corevm.LoadBlue, nil
	}
}

func (p *lineParser) parseRange() ([]corevm.Instruction, error) {
	kw, err := p.expectKeyword("absstart", "relstart", "absend", "relend", "abs", "rel")
	if err != nil {
		return nil, err
	}
	switch kw {
	case "absstart":
		v, err := p.valueOperand()
		return single(corevm.Range(corevm.RangeAbsoluteStart, v)), err
	case "relstart":
		v, err := p.valueOperand()
		return single(corevm.Range(corevm.RangeRelativeStart, v)), err
	case "absend":
		v, err := p.valueOperand()
		return single(corevm.Range(corevm.RangeAbsoluteEnd, v)), err
	case "relend":
		v, err := p.valueOperand()
		return single(corevm.Range(corevm.RangeRelativeEnd, v)), err
	}

	// "abs"/"rel" here always introduce the array sugar: two endpoints.
	elems, err := p.arrayOperand()
	if err != nil {
		return nil, err
	}
	vals, err := p.resolveImmediateArray(elems, 2)
	if err != nil {
		return nil, err
	}
	startOpt, endOpt := corevm.RangeAbsoluteStart, corevm.RangeAbsoluteEnd
	if kw == "rel" {
		startOpt, endOpt = corevm.RangeRelativeStart, corevm.RangeRelativeEnd
	}
	return []corevm.Instruction{
		corevm.Range(startOpt, vals[0]),
		corevm.Range(endOpt, vals[1]),
	}, nil
}

func (p *lineParser) parseFill() ([]corevm.Instruction, error) {
	t, ok := p.peek()
	if !ok {
		return nil, &ParseError{Kind: UnexpectedEOF, Line: p.line, Detail: "fill expects a channel keyword or an array"}
	}
	if t.Kind == TokArrayBegin {
		elems, err := p.arrayOperand()
		if err != nil {
			return nil, err
		}
		vals, err := p.resolveImmediateArray(elems, 3)
		if err != nil {
			return nil, err
		}
		return []corevm.Instruction{
			corevm.Fill(corevm.ColorRed, vals[0]),
			corevm.Fill(corevm.ColorGreen, vals[1]),
			corevm.Fill(corevm.ColorBlue, vals[2]),
		}, nil
	}
	c, err := p.colorKeyword()
	if err != nil {
		return nil, err
	}
	v, err := p.valueOperand()
	if err != nil {
		return nil, err
	}
	return single(corevm.Fill(c, v)), nil
}

func single(i corevm.Instruction) []corevm.Instruction { return []corevm.Instruction{i} }

// Parse consumes the full token stream (as produced by Lex) together with
// the label table (as produced by ScanLabels) and produces the ordered
// instruction sequence ready for Emit.
func Parse(tokens []Token, labels map[string]int) ([]corevm.Instruction, error) {
	var out []corevm.Instruction

	lineStart := 0
	for lineStart < len(tokens) {
		lineEnd := lineStart
		for lineEnd < len(tokens) && tokens[lineEnd].Kind != TokNewline {
			lineEnd++
		}
		lineToks := tokens[lineStart:lineEnd]
		lineNo := tokens[lineEnd].Line

		if len(lineToks) > 0 {
			p := &lineParser{toks: lineToks, line: lineNo, labels: labels}

			first, _ := p.next()
			switch first.Kind {
			case TokLabelDecl:
				if _, ok := labels[first.Text]; !ok {
					return nil, &ParseError{Kind: UndefinedLabel, Line: lineNo, Detail: first.Text}
				}
				if err := p.expectEndOfLine(); err != nil {
					return nil, err
				}
				// A label resolves to its source line index (see valueOperand),
				// not an instruction index, so it needs no instruction of its
				// own to stay meaningful. Emit a no-op anyway purely to keep
				// per-line instruction counts easy to reason about; the two
				// indices already diverge once an earlier line used the
				// range/fill array sugar, which expands to 2-3 instructions.
				out = append(out, corevm.Ignore(0))
			case TokText:
				instrs, err := p.parseMnemonic(first.Text)
				if err != nil {
					return nil, err
				}
				if err := p.expectEndOfLine(); err != nil {
					return nil, err
				}
				out = append(out, instrs...)
			default:
				return nil, p.unexpected(first)
			}
		}

		lineStart = lineEnd + 1
	}

	return out, nil
}
