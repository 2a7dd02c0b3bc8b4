package model

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/inference-sim/siren/siren/calc"
	"github.com/inference-sim/siren/siren/cosmo"
	"github.com/inference-sim/siren/siren/internal/testutil"
	"github.com/inference-sim/siren/siren/prior"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gaussianEvent tabulates a Gaussian distance posterior on [lo, hi].
func gaussianEvent(mean, sd, lo, hi, step float64) (dl, pdl []float64) {
	for x := lo; x <= hi+1e-9; x += step {
		u := (x - mean) / sd
		dl = append(dl, x)
		pdl = append(pdl, math.Exp(-0.5*u*u))
	}
	return dl, pdl
}

// nearbyEvent is a host at zc = 0.01 whose distance is centered on the
// H0 = 70 Hubble-law value.
func nearbyEvent() Event {
	dl, pdl := gaussianEvent(43, 2, 10, 80, 0.5)
	return Event{Name: "nearby", DL: dl, PDL: pdl, ZC: 0.01, DLHorizon: 200}
}

func buildNearby(t *testing.T, opts ...Option) *Model {
	t.Helper()
	ev := nearbyEvent()
	m, err := BuildModel(ev.DL, ev.PDL, ev.ZC, ev.DLHorizon, opts...)
	require.NoError(t, err)
	return m
}

// floatPotential assembles the potential from the float64 API.
func floatPotential(t *testing.T, ev Event, h0, om, w float64) float64 {
	t.Helper()
	zs, err := cosmo.RedshiftGrid(cosmo.DefaultZMax, cosmo.DefaultGridPoints)
	require.NoError(t, err)
	dH := cosmo.HubbleDistance(h0)
	dC, err := cosmo.ComovingDistance(zs, dH, om, w)
	require.NoError(t, err)
	dL, err := cosmo.LuminosityDistance(zs, dC)
	require.NoError(t, err)
	pz, err := cosmo.PZ(zs, dC, dH, om, w)
	require.NoError(t, err)

	zh, err := calc.Interp(ev.DLHorizon, dL, zs)
	require.NoError(t, err)
	p, err := calc.Interp(ev.ZC, zs, pz)
	require.NoError(t, err)
	b, err := cosmo.Beta(zh, zs, pz)
	require.NoError(t, err)
	d, err := calc.Interp(ev.ZC, zs, dL)
	require.NoError(t, err)

	density, err := prior.NewInterpolated(ev.DL, ev.PDL)
	require.NoError(t, err)
	return math.Log(density.Density(d)) + math.Log(p/b)
}

func TestBuildModel_DefaultParameters(t *testing.T) {
	m := buildNearby(t)
	assert.Equal(t, []string{ParamH0, ParamOm}, m.Names())
	assert.Equal(t, []float64{70, 0.3}, m.InitialPoint())
	assert.Equal(t, 1, m.Index(ParamOm))
	assert.Equal(t, -1, m.Index(ParamW))
	assert.Len(t, m.Grid(), cosmo.DefaultGridPoints)

	p, err := m.Derived([]float64{70, 0.3})
	require.NoError(t, err)
	assert.Equal(t, -1.0, p.W)
	assert.InDelta(t, 0.3*0.49, p.Omh2, 1e-12)
	assert.InDelta(t, 4282.7494, p.DH, 1e-4)
}

func TestBuildModel_Omh2PriorDerivesOm(t *testing.T) {
	n, err := prior.NewNormal(0.1430, 0.0011)
	require.NoError(t, err)
	m := buildNearby(t, WithOmh2Prior(n))

	assert.Equal(t, []string{ParamH0, ParamOmh2}, m.Names())
	assert.Equal(t, []float64{70, 0.1430}, m.InitialPoint())

	p, err := m.Derived([]float64{70, 0.1430})
	require.NoError(t, err)
	assert.InDelta(t, 0.1430/0.49, p.Om, 1e-12)
	assert.Equal(t, 0.1430, p.Omh2)
}

func TestBuildModel_FreeWAndEmpiricalH0(t *testing.T) {
	h0, err := prior.NewInterpolated([]float64{60, 67, 74, 80}, []float64{0, 1, 1, 0})
	require.NoError(t, err)
	m := buildNearby(t, WithFreeW(), WithH0Prior(h0))
	assert.Equal(t, []string{ParamH0, ParamOm, ParamW}, m.Names())
	assert.Equal(t, []float64{70, 0.3, -1}, m.InitialPoint())

	// H0 outside the empirical support has zero prior density
	lp, err := m.LogDensity([]float64{85, 0.3, -1})
	require.NoError(t, err)
	assert.True(t, math.IsInf(lp, -1))
}

func TestBuildModel_InitialPointFallsBackToPriorCenter(t *testing.T) {
	h0, err := prior.NewInterpolated([]float64{100, 110, 120}, []float64{1, 2, 1})
	require.NoError(t, err)
	m := buildNearby(t, WithH0Prior(h0))
	assert.Equal(t, 110.0, m.InitialPoint()[0])
}

func TestBuildModel_RejectsBadInput(t *testing.T) {
	ev := nearbyEvent()

	_, err := BuildModel(ev.DL, ev.PDL[1:], ev.ZC, ev.DLHorizon)
	assert.True(t, errors.Is(err, calc.ErrShape), "got %v", err)

	_, err = BuildModel(ev.DL, ev.PDL, ev.ZC, 0)
	assert.Error(t, err)

	_, err = BuildModel(ev.DL, ev.PDL, math.NaN(), ev.DLHorizon)
	assert.Error(t, err)

	_, err = BuildModel([]float64{3, 2, 1}, []float64{1, 1, 1}, ev.ZC, ev.DLHorizon)
	assert.True(t, errors.Is(err, calc.ErrDomain), "got %v", err)

	_, err = BuildModel(ev.DL, ev.PDL, ev.ZC, ev.DLHorizon, WithGrid(10, 1))
	assert.Error(t, err)

	_, err = New(DefaultConfig())
	assert.Error(t, err)
}

func TestPotential_MatchesFloatPipeline(t *testing.T) {
	m := buildNearby(t)
	ev := nearbyEvent()
	for _, theta := range [][]float64{{70, 0.3}, {64.5, 0.12}, {77, 0.9}} {
		got, err := m.Potential(theta)
		require.NoError(t, err)
		want := floatPotential(t, ev, theta[0], theta[1], -1)
		testutil.AssertFloat64Equal(t, "potential", want, got, 1e-9)
	}
}

func TestPotential_FreeWMatchesFloatPipeline(t *testing.T) {
	m := buildNearby(t, WithFreeW())
	got, err := m.Potential([]float64{68, 0.28, -0.7})
	require.NoError(t, err)
	want := floatPotential(t, nearbyEvent(), 68, 0.28, -0.7)
	testutil.AssertFloat64Equal(t, "potential", want, got, 1e-9)
}

func TestPotential_PeaksNearTrueHubbleConstant(t *testing.T) {
	m := buildNearby(t)
	best, bestH0 := math.Inf(-1), 0.0
	for h0 := 55.0; h0 <= 90; h0 += 0.25 {
		v, err := m.LogDensity([]float64{h0, 0.3})
		require.NoError(t, err)
		if v > best {
			best, bestH0 = v, h0
		}
	}
	assert.InDelta(t, 70, bestH0, 3)
}

func TestPotential_UnphysicalParametersAreNotFinite(t *testing.T) {
	m := buildNearby(t)
	v, err := m.Potential([]float64{-70, 0.3})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v) || math.IsInf(v, 0), "got %g", v)

	// the prior guards the log density
	lp, err := m.LogDensity([]float64{-70, 0.3})
	require.NoError(t, err)
	assert.True(t, math.IsInf(lp, -1))
}

func TestModel_RejectsWrongParameterCount(t *testing.T) {
	m := buildNearby(t)
	_, err := m.Potential([]float64{70})
	assert.True(t, errors.Is(err, calc.ErrShape))
	_, err = m.LogDensity([]float64{70, 0.3, -1})
	assert.True(t, errors.Is(err, calc.ErrShape))
	_, _, err = m.LogDensityGrad(nil)
	assert.True(t, errors.Is(err, calc.ErrShape))
	_, err = m.Derived([]float64{1, 2, 3})
	assert.True(t, errors.Is(err, calc.ErrShape))
}

func TestLogDensity_IsPriorPlusPotential(t *testing.T) {
	m := buildNearby(t)
	theta := []float64{71, 0.32}
	lp, err := m.LogPrior(theta)
	require.NoError(t, err)
	pot, err := m.Potential(theta)
	require.NoError(t, err)
	ld, err := m.LogDensity(theta)
	require.NoError(t, err)
	assert.InDelta(t, -math.Log(105)-math.Log(1), lp, 1e-12)
	assert.InDelta(t, lp+pot, ld, 1e-12)
}

func TestGradient_MatchesFiniteDifference(t *testing.T) {
	n, err := prior.NewNormal(0.1430, 0.0011)
	require.NoError(t, err)

	tests := []struct {
		name  string
		opts  []Option
		theta []float64
	}{
		{"H0 Om", nil, []float64{68.3, 0.271}},
		{"H0 Om w", []Option{WithFreeW()}, []float64{71.7, 0.334, -0.83}},
		{"H0 Omh2", []Option{WithOmh2Prior(n)}, []float64{69.1, 0.1441}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildNearby(t, tt.opts...)
			f := func(theta []float64) float64 {
				v, err := m.LogDensity(theta)
				require.NoError(t, err)
				return v
			}
			val, grad, err := m.LogDensityGrad(tt.theta)
			require.NoError(t, err)
			assert.InDelta(t, f(tt.theta), val, 1e-12)
			for i := range tt.theta {
				fd := testutil.CentralDifference(f, tt.theta, i, 1e-6)
				testutil.AssertFloat64Equal(t, "d/d"+m.Names()[i], fd, grad[i], 1e-4)
			}

			pot, pgrad, err := m.PotentialGrad(tt.theta)
			require.NoError(t, err)
			want, err := m.Potential(tt.theta)
			require.NoError(t, err)
			assert.InDelta(t, want, pot, 1e-12)
			assert.Len(t, pgrad, len(tt.theta))
		})
	}
}

func TestGradient_OutsidePriorIsZero(t *testing.T) {
	m := buildNearby(t)
	val, grad, err := m.LogDensityGrad([]float64{200, 0.3})
	require.NoError(t, err)
	assert.True(t, math.IsInf(val, -1))
	assert.Equal(t, []float64{0, 0}, grad)
}

func TestNew_MultipleEventsSumPotentials(t *testing.T) {
	a := nearbyEvent()
	dl, pdl := gaussianEvent(88, 5, 40, 140, 1)
	b := Event{Name: "farther", DL: dl, PDL: pdl, ZC: 0.02, DLHorizon: 300}

	joint, err := New(DefaultConfig(), a, b)
	require.NoError(t, err)
	ma, err := New(DefaultConfig(), a)
	require.NoError(t, err)
	mb, err := New(DefaultConfig(), b)
	require.NoError(t, err)

	theta := []float64{69, 0.31}
	pj, err := joint.Potential(theta)
	require.NoError(t, err)
	pa, err := ma.Potential(theta)
	require.NoError(t, err)
	pb, err := mb.Potential(theta)
	require.NoError(t, err)
	assert.InDelta(t, pa+pb, pj, 1e-9)
}

func TestSamplePrior_WithinSupport(t *testing.T) {
	m := buildNearby(t, WithFreeW())
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		theta := m.SamplePrior(rng)
		lp, err := m.LogPrior(theta)
		require.NoError(t, err)
		require.False(t, math.IsInf(lp, -1), "draw %v outside prior support", theta)
	}
}
