package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaiseFormatsMessage(t *testing.T) {
	span := &TextSpan{StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 8}
	le := Raise(span, "cannot resolve `%s`", "velocity")

	assert.Equal(t, "cannot resolve `velocity`", le.Error())
	assert.Same(t, span, le.Span)
}

func TestStructuralErrorIsNotALocalError(t *testing.T) {
	// Entry-point handlers recover local errors by type assertion and
	// re-panic everything else; a structural error must not satisfy the
	// assertion or it would stop at the entry instead of the unit.
	var x interface{} = RaiseStructural(nil, "unexpected node shape")

	_, ok := x.(*LocalError)
	require.False(t, ok)

	se, ok := x.(*StructuralError)
	require.True(t, ok)
	assert.Equal(t, "unexpected node shape", se.Error())
}

func TestCatchErrorsRecoversLocal(t *testing.T) {
	InitReporter(LogLevelSilent)

	func() {
		defer CatchErrors("/tmp/a.adb", "a.adb")
		panic(Raise(nil, "bad reference"))
	}()

	assert.Equal(t, 1, ErrorCount())
	assert.True(t, AnyErrors())
	assert.False(t, ShouldProceed())
}

func TestCatchErrorsRecoversStructural(t *testing.T) {
	InitReporter(LogLevelSilent)

	func() {
		defer CatchErrors("/tmp/a.adb", "a.adb")
		panic(RaiseStructural(nil, "unit root must be a compilation unit"))
	}()

	assert.Equal(t, 1, ErrorCount())
}

func TestCatchErrorsRecoversStdError(t *testing.T) {
	InitReporter(LogLevelSilent)

	func() {
		defer CatchErrors("/tmp/a.adb", "a.adb")
		panic(errors.New("read failed"))
	}()

	assert.Equal(t, 1, ErrorCount())
}

func TestCatchErrorsWithoutPanic(t *testing.T) {
	InitReporter(LogLevelSilent)

	func() {
		defer CatchErrors("/tmp/a.adb", "a.adb")
	}()

	assert.Zero(t, ErrorCount())
}

func TestWarningsDoNotStopAnalysis(t *testing.T) {
	InitReporter(LogLevelSilent)

	ReportResolveWarning("/tmp/a.adb", "a.adb", nil, "no unit `%s` found", "ghost")
	ReportUnitWarning("ghost", "no specification found")

	assert.Equal(t, 2, WarningCount())
	assert.Zero(t, ErrorCount())
	assert.True(t, ShouldProceed())
}

func TestInitReporterResetsCounts(t *testing.T) {
	InitReporter(LogLevelSilent)
	ReportResolveError("/tmp/a.adb", "a.adb", nil, "type mismatch")
	require.Equal(t, 1, ErrorCount())

	InitReporter(LogLevelSilent)
	assert.Zero(t, ErrorCount())
	assert.Zero(t, WarningCount())
}

func TestNewSpanOver(t *testing.T) {
	first := &TextSpan{StartLine: 1, StartCol: 4, EndLine: 1, EndCol: 9}
	last := &TextSpan{StartLine: 3, StartCol: 0, EndLine: 3, EndCol: 5}

	over := NewSpanOver(first, last)
	assert.Equal(t, 1, over.StartLine)
	assert.Equal(t, 4, over.StartCol)
	assert.Equal(t, 3, over.EndLine)
	assert.Equal(t, 5, over.EndCol)
}
