package prism

import (
	"testing"

	"github.com/prismvm/newton/internal/corevm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) []corevm.Instruction {
	t.Helper()
	pre, err := Preprocess(src)
	require.NoError(t, err)
	labels := ScanLabels(pre)
	toks, err := Lex(pre)
	require.NoError(t, err)
	instrs, err := Parse(toks, labels)
	require.NoError(t, err)
	return instrs
}

func TestParseBasicMnemonics(t *testing.T) {
	instrs := parse(t, "update #ff\nclear 0\nignore 0\n")
	assert.Equal(t, []corevm.Instruction{
		corevm.Update(0xff),
		corevm.Clear(0),
		corevm.Ignore(0),
	}, instrs)
}

func TestParseSelectAndRange(t *testing.T) {
	instrs := parse(t, "select rel #aa\nrange absstart 0\nrange absend 3\n")
	assert.Equal(t, []corevm.Instruction{
		corevm.Select(corevm.SelectRelative, 0xaa),
		corevm.Range(corevm.RangeAbsoluteStart, 0),
		corevm.Range(corevm.RangeAbsoluteEnd, 3),
	}, instrs)
}

func TestParseRangeArraySugar(t *testing.T) {
	instrs := parse(t, "range abs ( 0 3 )\n")
	assert.Equal(t, []corevm.Instruction{
		corevm.Range(corevm.RangeAbsoluteStart, 0),
		corevm.Range(corevm.RangeAbsoluteEnd, 3),
	}, instrs)
}

func TestParseFillArraySugar(t *testing.T) {
	instrs := parse(t, "fill ( 16 32 48 )\n")
	assert.Equal(t, []corevm.Instruction{
		corevm.Fill(corevm.ColorRed, 16),
		corevm.Fill(corevm.ColorGreen, 32),
		corevm.Fill(corevm.ColorBlue, 48),
	}, instrs)
}

func TestParseBlurSleepLoad(t *testing.T) {
	instrs := parse(t, "blur range 128\nsleep sec 2\nload $rx variable 1\nload $ry red 0\n")
	assert.Equal(t, []corevm.Instruction{
		corevm.Blur(corevm.EffectApplyRange, 128),
		corevm.Sleep(corevm.TimeSec, 2),
		corevm.LoadX(corevm.LoadVariable, 1),
		corevm.LoadY(corevm.LoadRed, 0),
	}, instrs)
}

func TestParseSleepHoursUnit(t *testing.T) {
	instrs := parse(t, "sleep hrs 1\n")
	assert.Equal(t, []corevm.Instruction{
		corevm.Sleep(corevm.TimeHour, 1),
	}, instrs)
}

func TestParseSleepUnknownUnitFailsWithInvalidDelayType(t *testing.T) {
	pre, err := Preprocess("sleep fortnight 1\n")
	require.NoError(t, err)
	labels := ScanLabels(pre)
	toks, err := Lex(pre)
	require.NoError(t, err)
	_, err = Parse(toks, labels)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, InvalidDelayType, perr.Kind)
}

func TestParseLabelReferenceAsValue(t *testing.T) {
	instrs := parse(t, "select abs 0\nmarker:\nselect abs marker\n")
	assert.Equal(t, byte(1), instrs[2].Value)
}

func TestParseUndefinedLabelFails(t *testing.T) {
	pre, err := Preprocess("select abs missing\n")
	require.NoError(t, err)
	labels := ScanLabels(pre)
	toks, err := Lex(pre)
	require.NoError(t, err)
	_, err = Parse(toks, labels)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, UndefinedLabel, perr.Kind)
}

func TestParseUnrecognizedInstructionFails(t *testing.T) {
	pre, _ := Preprocess("frobnicate 1\n")
	labels := ScanLabels(pre)
	toks, err := Lex(pre)
	require.NoError(t, err)
	_, err = Parse(toks, labels)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, UnrecognizedInstruction, perr.Kind)
}

func TestParseMixedArrayAddressingFails(t *testing.T) {
	pre, _ := Preprocess("fill ( 1 $rx 3 )\n")
	labels := ScanLabels(pre)
	toks, err := Lex(pre)
	require.NoError(t, err)
	_, err = Parse(toks, labels)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, MixedArrayAddressing, perr.Kind)
}

func TestParseWrongArraySizeFails(t *testing.T) {
	pre, _ := Preprocess("fill ( 1 2 )\n")
	labels := ScanLabels(pre)
	toks, err := Lex(pre)
	require.NoError(t, err)
	_, err = Parse(toks, labels)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, InvalidArraySize, perr.Kind)
}

func TestParseIndirectArrayRejectedAsInvalidType(t *testing.T) {
	pre, _ := Preprocess("fill ( $rx $ry $42 )\n")
	labels := ScanLabels(pre)
	toks, err := Lex(pre)
	require.NoError(t, err)
	_, err = Parse(toks, labels)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, InvalidType, perr.Kind)
}

func TestParseLabelDeclEmitsNoOpPreservingLineIndex(t *testing.T) {
	instrs := parse(t, "update 1\nmarker:\nupdate 2\n")
	require.Len(t, instrs, 3)
	assert.Equal(t, corevm.Ignore(0), instrs[1])
}

func TestParseTrailingTokenFails(t *testing.T) {
	pre, _ := Preprocess("clear 0 1\n")
	labels := ScanLabels(pre)
	toks, err := Lex(pre)
	require.NoError(t, err)
	_, err = Parse(toks, labels)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, UnexpectedToken, perr.Kind)
}
