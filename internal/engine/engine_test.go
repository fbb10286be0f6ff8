package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregoriobaldi/tesi/internal/cell"
	"github.com/gregoriobaldi/tesi/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(NewMemStore(), opts...)
}

func set(t *testing.T, e *Engine, addr, raw string) {
	t.Helper()
	a, err := cell.ParseAddress(addr)
	require.NoError(t, err)
	require.NoError(t, e.SetCell(a, raw))
}

func value(t *testing.T, e *Engine, addr string) cell.Value {
	t.Helper()
	a, err := cell.ParseAddress(addr)
	require.NoError(t, err)
	return e.GetValue(a)
}

func TestEngineChainRecalculation(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "10")
	set(t, e, "B1", "=A1*2")
	set(t, e, "C1", "=B1+5")

	assert.Equal(t, cell.Number(20), value(t, e, "B1"))
	assert.Equal(t, cell.Number(25), value(t, e, "C1"))

	set(t, e, "A1", "5")
	assert.Equal(t, cell.Number(10), value(t, e, "B1"))
	assert.Equal(t, cell.Number(15), value(t, e, "C1"))
}

func TestEngineDivisionByZero(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=1/0")
	assert.Equal(t, cell.Error(cell.ErrorDivByZero), value(t, e, "A1"))
}

func TestEngineUnknownFunction(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=UNKNOWNFN()")
	kind, ok := errKind(t, e, "A1")
	require.True(t, ok)
	assert.Equal(t, cell.ErrorUnknownName, kind)
}

func errKind(t *testing.T, e *Engine, addr string) (cell.ErrorKind, bool) {
	t.Helper()
	a, err := cell.ParseAddress(addr)
	require.NoError(t, err)
	return e.GetError(a)
}

func TestEngineUnknownIdentifier(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=foo+1")
	kind, ok := errKind(t, e, "A1")
	require.True(t, ok)
	assert.Equal(t, cell.ErrorUnknownName, kind)
	assert.Equal(t, "=foo+1", e.GetRawText(mustAddr(t, "A1")))
}

func TestEngineSumSkipsText(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A2", "1")
	set(t, e, "A3", "2")
	set(t, e, "A4", "x")
	set(t, e, "A1", "=SUM(A2:A4)")

	assert.Equal(t, cell.Number(3), value(t, e, "A1"))
}

func TestEngineIfShortCircuit(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", `=IF(1>0,"yes",1/0)`)
	assert.Equal(t, cell.Text("yes"), value(t, e, "A1"))
}

func TestEngineErrorPropagation(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=1/0")
	set(t, e, "B1", "=A1+1")
	set(t, e, "C1", "=SUM(A1:B1)")

	assert.Equal(t, cell.Error(cell.ErrorDivByZero), value(t, e, "B1"))
	assert.Equal(t, cell.Error(cell.ErrorDivByZero), value(t, e, "C1"))
}

func TestEngineCycleDetection(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=B1+1")
	set(t, e, "B1", "=A1+1")
	set(t, e, "C1", "=B1*2")

	assert.Equal(t, cell.Error(cell.ErrorCycle), value(t, e, "A1"))
	assert.Equal(t, cell.Error(cell.ErrorCycle), value(t, e, "B1"))
	// downstream of the cycle is contaminated too
	assert.Equal(t, cell.Error(cell.ErrorCycle), value(t, e, "C1"))
}

func TestEngineCycleRecovery(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=B1+1")
	set(t, e, "B1", "=A1+1")
	assert.Equal(t, cell.Error(cell.ErrorCycle), value(t, e, "A1"))

	set(t, e, "B1", "5")
	assert.Equal(t, cell.Number(6), value(t, e, "A1"))
	assert.Equal(t, cell.Number(5), value(t, e, "B1"))
}

func TestEngineSelfReferenceIsCycle(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=A1+1")
	assert.Equal(t, cell.Error(cell.ErrorCycle), value(t, e, "A1"))
}

func TestEngineCellsOutsideCycleStillCalculate(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=B1")
	set(t, e, "B1", "=A1")
	set(t, e, "D1", "7")
	set(t, e, "E1", "=D1*2")

	assert.Equal(t, cell.Error(cell.ErrorCycle), value(t, e, "A1"))
	assert.Equal(t, cell.Number(14), value(t, e, "E1"))
}

func TestEngineIdempotentReset(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "10")
	set(t, e, "B1", "=A1*2")

	before := value(t, e, "B1")
	set(t, e, "B1", "=A1*2")
	assert.Equal(t, before, value(t, e, "B1"))
	set(t, e, "A1", "10")
	assert.Equal(t, before, value(t, e, "B1"))
}

func TestEngineIncrementalRecalculation(t *testing.T) {
	var evaluated []string
	e := newTestEngine(t, WithOnEvaluate(func(a cell.Address) {
		evaluated = append(evaluated, a.String())
	}))
	set(t, e, "A1", "1")
	set(t, e, "B1", "=A1+1")
	set(t, e, "C1", "=B1+1")
	set(t, e, "D1", "100")
	set(t, e, "E1", "=D1*2")

	// editing A1 must evaluate B1 and C1 only, never E1
	evaluated = nil
	set(t, e, "A1", "2")
	assert.Equal(t, []string{"B1", "C1"}, evaluated)

	evaluated = nil
	set(t, e, "D1", "200")
	assert.Equal(t, []string{"E1"}, evaluated)
}

func TestEngineEvaluationOrderWritesBack(t *testing.T) {
	e := newTestEngine(t)
	// C1 reads both A1 and B1; B1 reads A1. B1 must be fresh before
	// C1 evaluates.
	set(t, e, "B1", "=A1*2")
	set(t, e, "C1", "=A1+B1")
	set(t, e, "A1", "3")

	assert.Equal(t, cell.Number(6), value(t, e, "B1"))
	assert.Equal(t, cell.Number(9), value(t, e, "C1"))
}

func TestEngineSyntaxError(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "=1+")
	set(t, e, "B1", "=A1*2")

	assert.Equal(t, cell.Error(cell.ErrorGeneric), value(t, e, "A1"))
	assert.Equal(t, "=1+", e.GetRawText(mustAddr(t, "A1")))
	// dependents see the error value
	assert.Equal(t, cell.Error(cell.ErrorGeneric), value(t, e, "B1"))
	// a broken formula reads nothing
	assert.Empty(t, e.GetDependencies(mustAddr(t, "A1")))
}

func mustAddr(t *testing.T, s string) cell.Address {
	t.Helper()
	a, err := cell.ParseAddress(s)
	require.NoError(t, err)
	return a
}

func TestEngineSyntaxErrorRecovery(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "5")
	set(t, e, "B1", "=A1+")
	assert.Equal(t, cell.Error(cell.ErrorGeneric), value(t, e, "B1"))

	set(t, e, "B1", "=A1+1")
	assert.Equal(t, cell.Number(6), value(t, e, "B1"))
}

func TestEngineLiterals(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		raw  string
		want cell.Value
	}{
		{"42", cell.Number(42)},
		{"-1.5", cell.Number(-1.5)},
		{"hello", cell.Text("hello")},
		{"TRUE", cell.Boolean(true)},
		{"false", cell.Boolean(false)},
		{"=5", cell.Number(5)},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			set(t, e, "A1", tc.raw)
			assert.Equal(t, tc.want, value(t, e, "A1"))
		})
	}
}

func TestEngineClearCell(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "A1", "10")
	set(t, e, "B1", "=A1+1")
	assert.Equal(t, cell.Number(11), value(t, e, "B1"))

	set(t, e, "A1", "")
	assert.Equal(t, cell.Empty, value(t, e, "A1"))
	assert.Equal(t, "", e.GetRawText(mustAddr(t, "A1")))
	// empty cells read as zero
	assert.Equal(t, cell.Number(1), value(t, e, "B1"))
}

func TestEngineOutOfBounds(t *testing.T) {
	cfg := config.Default()
	cfg.MaxRows = 10
	cfg.MaxCols = 10
	e := newTestEngine(t, WithConfig(cfg))

	err := e.SetCell(cell.Address{Col: 10, Row: 0}, "1")
	require.Error(t, err)
	err = e.SetCell(cell.Address{Col: 0, Row: 10}, "1")
	require.Error(t, err)
	// store untouched
	assert.Empty(t, e.Snapshot())
}

func TestEngineOutOfBoundsReference(t *testing.T) {
	cfg := config.Default()
	cfg.MaxRows = 10
	cfg.MaxCols = 10
	e := newTestEngine(t, WithConfig(cfg))

	set(t, e, "A1", "=Z99+1")
	kind, ok := errKind(t, e, "A1")
	require.True(t, ok)
	assert.Equal(t, cell.ErrorBadReference, kind)

	// an aggregate spilling past the sheet edge is contaminated too
	set(t, e, "B1", "=SUM(C1:C20)")
	assert.Equal(t, cell.Error(cell.ErrorBadReference), value(t, e, "B1"))
}

func TestEngineDependencyQueries(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "C1", "=A1+B1")

	deps := e.GetDependencies(mustAddr(t, "C1"))
	assert.Equal(t, []cell.Address{mustAddr(t, "A1"), mustAddr(t, "B1")}, deps)
	assert.Equal(t, []cell.Address{mustAddr(t, "C1")}, e.GetDependents(mustAddr(t, "A1")))
}

func TestEngineRangeDependencies(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "B1", "=SUM(A1:A3)")

	deps := e.GetDependencies(mustAddr(t, "B1"))
	assert.Len(t, deps, 3)

	// editing any member recalculates the aggregate
	set(t, e, "A2", "4")
	assert.Equal(t, cell.Number(4), value(t, e, "B1"))
}

func TestEngineLoadAll(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "Z9", "kept")

	raws := map[cell.Address]string{
		mustAddr(t, "A1"): "10",
		mustAddr(t, "B1"): "=A1*2",
		mustAddr(t, "C1"): "=B1+5",
	}
	require.NoError(t, e.LoadAll(raws))

	assert.Equal(t, cell.Number(20), value(t, e, "B1"))
	assert.Equal(t, cell.Number(25), value(t, e, "C1"))
	// cells not named in the batch behave as if each entry had been
	// set individually: they survive
	assert.Equal(t, cell.Text("kept"), value(t, e, "Z9"))
}

func TestEngineLoadAllRecalculatesExistingDependents(t *testing.T) {
	e := newTestEngine(t)
	set(t, e, "B1", "=A1+1")

	require.NoError(t, e.LoadAll(map[cell.Address]string{
		mustAddr(t, "A1"): "41",
	}))
	assert.Equal(t, cell.Number(42), value(t, e, "B1"))
}

func TestEngineLoadAllWithCycle(t *testing.T) {
	e := newTestEngine(t)
	raws := map[cell.Address]string{
		mustAddr(t, "A1"): "=B1",
		mustAddr(t, "B1"): "=A1",
		mustAddr(t, "C1"): "1",
	}
	require.NoError(t, e.LoadAll(raws))
	assert.Equal(t, cell.Error(cell.ErrorCycle), value(t, e, "A1"))
	assert.Equal(t, cell.Error(cell.ErrorCycle), value(t, e, "B1"))
	assert.Equal(t, cell.Number(1), value(t, e, "C1"))
}
