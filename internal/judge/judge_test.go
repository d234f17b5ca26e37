package judge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/pkgid"
)

func bar(o, h, l, c float64) domain.Bar {
	return domain.Bar{Time: time.Unix(0, 0), Open: o, High: h, Low: l, Close: c}
}

func TestHeikinAshi_Recursion(t *testing.T) {
	bars := domain.BarWindow{
		bar(100, 104, 98, 102),
		bar(102, 106, 101, 105),
	}

	ha := HeikinAshi(bars)
	require.Len(t, ha, 2)

	// First smoothed bar seeds from the first raw bar.
	assert.InDelta(t, 101.0, ha[0].Open, 1e-9)  // (100+102)/2
	assert.InDelta(t, 101.0, ha[0].Close, 1e-9) // (100+104+98+102)/4

	// Second open is the midpoint of the previous smoothed bar.
	assert.InDelta(t, 101.0, ha[1].Open, 1e-9)
	assert.InDelta(t, 103.5, ha[1].Close, 1e-9) // (102+106+101+105)/4
	assert.InDelta(t, 106.0, ha[1].High, 1e-9)
	assert.InDelta(t, 101.0, ha[1].Low, 1e-9)
}

func TestHeikinAshi_Empty(t *testing.T) {
	assert.Nil(t, HeikinAshi(nil))
}

func TestDokyaku_Continuation(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	// Close sits 5 pips above the smoothed close on both bars.
	bars := domain.BarWindow{bar(110, 110.1, 109.9, 110.05), bar(110.05, 110.2, 110.0, 110.15)}
	ha := domain.BarWindow{bar(110, 110.1, 109.9, 110.00), bar(110.00, 110.2, 110.0, 110.10)}

	j := Dokyaku(bars, ha, tn)
	assert.Equal(t, domain.DirectionUp, j.Direction)
	// 5 pips against a 2 pip threshold clamps to 1.
	assert.InDelta(t, 1.0, j.Confidence, 1e-9)
}

func TestDokyaku_Flip(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	// Previous deviation positive, last negative by 4 pips.
	bars := domain.BarWindow{bar(110, 110.1, 109.9, 110.05), bar(110.05, 110.1, 109.9, 109.96)}
	ha := domain.BarWindow{bar(110, 110.1, 109.9, 110.00), bar(110.00, 110.1, 109.9, 110.00)}

	j := Dokyaku(bars, ha, tn)
	assert.Equal(t, domain.DirectionDown, j.Direction)
	// Half the continuation confidence: (4/(2*2))/2.
	assert.InDelta(t, 0.5, j.Confidence, 1e-9)
}

func TestDokyaku_BelowThresholdIsNeutral(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	bars := domain.BarWindow{bar(110, 110.1, 109.9, 110.005), bar(110, 110.1, 109.9, 110.01)}
	ha := domain.BarWindow{bar(110, 110.1, 109.9, 110.0), bar(110, 110.1, 109.9, 110.0)}

	assert.Equal(t, neutral, Dokyaku(bars, ha, tn))
}

func TestDokyaku_ShortWindow(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)
	one := domain.BarWindow{bar(110, 110, 110, 110)}
	assert.Equal(t, neutral, Dokyaku(one, one, tn))
}

func TestIkikaeri_Going(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	// Bullish smoothed bars, high updated by 5 pips, full body.
	bars := domain.BarWindow{bar(110.00, 110.10, 110.00, 110.10), bar(110.10, 110.20, 110.10, 110.20)}
	ha := HeikinAshi(bars)
	require.True(t, ha[len(ha)-1].Bullish())

	j := Ikikaeri(bars, ha, tn)
	assert.Equal(t, domain.DirectionUp, j.Direction)
	// Body ratio 1.0 pushes confidence to the cap.
	assert.InDelta(t, 1.0, j.Confidence, 1e-9)
}

func TestIkikaeri_Return(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	bars := domain.BarWindow{bar(110.00, 110.10, 110.00, 110.10), bar(110.10, 110.10, 109.90, 109.92)}
	ha := domain.BarWindow{bar(110.00, 110.10, 110.00, 110.05), bar(110.05, 110.10, 109.90, 110.00)}
	require.True(t, ha[0].Bullish())
	require.True(t, ha[1].Bearish())

	j := Ikikaeri(bars, ha, tn)
	assert.Equal(t, domain.DirectionDown, j.Direction)
	assert.InDelta(t, 0.6, j.Confidence, 1e-9)
}

func TestIkikaeri_Pause(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	// Still bullish but the high did not advance: a stalled wave.
	bars := domain.BarWindow{bar(110.00, 110.20, 110.00, 110.18), bar(110.10, 110.20, 110.08, 110.14)}
	ha := HeikinAshi(bars)
	require.True(t, ha[1].Bullish())

	j := Ikikaeri(bars, ha, tn)
	assert.Equal(t, domain.DirectionUp, j.Direction)
	// Pause factor times the body ratio: 0.5 * (0.04/0.12).
	assert.InDelta(t, 0.5*(0.04/0.12), j.Confidence, 1e-9)
}

func TestMomiOvershoot_Momi(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	// 4 pip range against an 8 pip limit, last close inside.
	bars := domain.BarWindow{
		bar(110.00, 110.04, 110.00, 110.02),
		bar(110.02, 110.04, 110.00, 110.01),
		bar(110.01, 110.03, 110.00, 110.02),
	}

	j := MomiOvershoot(bars, tn)
	assert.Equal(t, domain.DirectionNeutral, j.Direction)
	assert.InDelta(t, 0.5, j.Confidence, 1e-9)
}

func TestMomiOvershoot_BreakoutUp(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	// Tight window then a last close far above it.
	bars := domain.BarWindow{
		bar(110.00, 110.02, 110.00, 110.01),
		bar(110.01, 110.02, 110.00, 110.01),
		bar(110.01, 110.40, 110.01, 110.40),
	}

	j := MomiOvershoot(bars, tn)
	assert.Equal(t, domain.DirectionUp, j.Direction)
	assert.GreaterOrEqual(t, j.Confidence, tn.OvershootMinConf)
	assert.LessOrEqual(t, j.Confidence, 1.0)
}

func TestMomiOvershoot_BreakoutDown(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	bars := domain.BarWindow{
		bar(110.00, 110.02, 110.00, 110.01),
		bar(110.01, 110.02, 110.00, 110.01),
		bar(110.01, 110.01, 109.60, 109.60),
	}

	j := MomiOvershoot(bars, tn)
	assert.Equal(t, domain.DirectionDown, j.Direction)
	assert.GreaterOrEqual(t, j.Confidence, tn.OvershootMinConf)
}

func TestMomiOvershoot_WideRangeNoBreakout(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)

	// 20 pip range, last close inside: neither momi nor overshoot.
	bars := domain.BarWindow{
		bar(110.00, 110.20, 110.00, 110.10),
		bar(110.10, 110.20, 110.00, 110.05),
		bar(110.05, 110.15, 110.00, 110.10),
	}

	assert.Equal(t, neutral, MomiOvershoot(bars, tn))
}

func TestMomiOvershoot_ShortWindow(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)
	two := domain.BarWindow{bar(110, 110, 110, 110), bar(110, 110, 110, 110)}
	assert.Equal(t, neutral, MomiOvershoot(two, tn))
}

func TestNewFunc_UnknownType(t *testing.T) {
	_, err := NewFunc(fn.Type("bogus"), DefaultTuning(pkgid.CurrencyUSDJPY))
	assert.ErrorIs(t, err, fn.ErrUnknownType)
}

func TestNewFunc_EvaluateDokyaku(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)
	f, err := NewFunc(TypeDokyaku, tn)
	require.NoError(t, err)
	assert.Equal(t, TypeDokyaku, f.Type())

	bars := domain.BarWindow{bar(110, 110.1, 109.9, 110.05), bar(110.05, 110.2, 110.0, 110.15)}
	ha := domain.BarWindow{bar(110, 110.1, 109.9, 110.00), bar(110.00, 110.2, 110.0, 110.10)}

	v, err := f.Evaluate([]fn.Value{bars, ha}, nil)
	require.NoError(t, err)
	j, ok := v.(domain.Judgment)
	require.True(t, ok)
	assert.Equal(t, domain.DirectionUp, j.Direction)
}

func TestNewFunc_ComputesHeikinAshiWhenMissing(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)
	f, err := NewFunc(TypeIkikaeri, tn)
	require.NoError(t, err)

	bars := domain.BarWindow{bar(110.00, 110.10, 110.00, 110.10), bar(110.10, 110.20, 110.10, 110.20)}

	// Single input: the smoothed window is derived internally.
	v, err := f.Evaluate([]fn.Value{bars}, nil)
	require.NoError(t, err)
	j := v.(domain.Judgment)
	assert.Equal(t, domain.DirectionUp, j.Direction)
}

func TestRegister_WiresStandardSlice(t *testing.T) {
	g := graph.New()
	j, err := Register(g, pkgid.Timeframe3Min, pkgid.PeriodCommon, pkgid.CurrencyUSDJPY, DefaultTuning(pkgid.CurrencyUSDJPY))
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 0, j.Bars.Layer)
	for _, id := range j.All() {
		assert.Equal(t, 1, id.Layer)
		n, ok := g.Node(id)
		require.True(t, ok)
		assert.Equal(t, []pkgid.ID{j.Bars}, n.Inputs)
	}
}

func TestNewFunc_NilInputIsNeutral(t *testing.T) {
	tn := DefaultTuning(pkgid.CurrencyUSDJPY)
	f, err := NewFunc(TypeMomiOvershoot, tn)
	require.NoError(t, err)

	v, err := f.Evaluate([]fn.Value{nil}, nil)
	require.NoError(t, err)
	assert.Equal(t, neutral, v)
}
