package history

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/census-maximizer/internal/census"
	"github.com/danielpatrickdp/census-maximizer/internal/weights"
)

func unitWeights(dims ...census.Dimension) *weights.Model {
	m := &weights.Model{Census: map[census.Dimension]float64{}, Policy: map[string]float64{}}
	for _, d := range dims {
		m.Census[d] = 1
	}
	return m
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// #region reconstruct-tests
func TestReconstructLinearMidpoint(t *testing.T) {
	r := &Reconstructor{Step: 1}
	samples := map[census.Dimension][]Sample{
		0: {{Timestamp: 0, Value: 0}, {Timestamp: 10, Value: 100}},
	}
	s, err := r.Reconstruct(samples, unitWeights(0))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if s.Len() != 10 {
		t.Fatalf("expected 10 points (max excluded), got %d", s.Len())
	}
	if s.Timestamps[5] != 5 || !approx(s.Scores[5], 50) {
		t.Fatalf("expected 50 at t=5, got %f at t=%d", s.Scores[5], s.Timestamps[5])
	}
}

func TestReconstructNoSamples(t *testing.T) {
	r := NewReconstructor()
	_, err := r.Reconstruct(map[census.Dimension][]Sample{0: nil}, unitWeights(0))
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestReconstructClampsOutsideRange(t *testing.T) {
	r := &Reconstructor{Step: 1}
	samples := map[census.Dimension][]Sample{
		0: {{Timestamp: 0, Value: 1}, {Timestamp: 10, Value: 1}},
		1: {{Timestamp: 4, Value: 10}, {Timestamp: 6, Value: 20}},
	}
	s, err := r.Reconstruct(samples, unitWeights(0, 1))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !approx(s.Scores[0], 11) {
		t.Fatalf("expected left clamp 1+10, got %f", s.Scores[0])
	}
	if !approx(s.Scores[5], 16) {
		t.Fatalf("expected 1+15 at t=5, got %f", s.Scores[5])
	}
	if !approx(s.Scores[9], 21) {
		t.Fatalf("expected right clamp 1+20, got %f", s.Scores[9])
	}
}

func TestReconstructAppliesWeights(t *testing.T) {
	r := &Reconstructor{Step: 5}
	samples := map[census.Dimension][]Sample{
		0: {{Timestamp: 0, Value: 2}, {Timestamp: 10, Value: 2}},
		1: {{Timestamp: 0, Value: 3}, {Timestamp: 10, Value: 3}},
	}
	w := unitWeights(0, 1)
	w.Census[0] = -1
	w.Census[1] = 2
	s, err := r.Reconstruct(samples, w)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", s.Len())
	}
	for i, v := range s.Scores {
		if !approx(v, 4) {
			t.Fatalf("point %d: expected -2+6=4, got %f", i, v)
		}
	}
}

func TestReconstructUnsortedSamples(t *testing.T) {
	r := &Reconstructor{Step: 1}
	samples := map[census.Dimension][]Sample{
		0: {{Timestamp: 10, Value: 100}, {Timestamp: 0, Value: 0}},
	}
	s, err := r.Reconstruct(samples, unitWeights(0))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !approx(s.Scores[3], 30) {
		t.Fatalf("expected 30 at t=3, got %f", s.Scores[3])
	}
}

func TestReconstructMissingWeight(t *testing.T) {
	r := NewReconstructor()
	samples := map[census.Dimension][]Sample{
		7: {{Timestamp: 0, Value: 1}, {Timestamp: Day * 2, Value: 1}},
	}
	_, err := r.Reconstruct(samples, unitWeights(0))
	if !errors.Is(err, census.ErrUnknownDimension) {
		t.Fatalf("expected ErrUnknownDimension, got %v", err)
	}
}

func TestReconstructBlackMarketCorrection(t *testing.T) {
	const cutoff = 1574164800
	r := NewReconstructor()
	samples := map[census.Dimension][]Sample{
		79: {
			{Timestamp: cutoff - 2*Day, Value: 600},
			{Timestamp: cutoff - Day, Value: 600},
			{Timestamp: cutoff, Value: 100},
			{Timestamp: cutoff + Day, Value: 100},
		},
	}
	s, err := r.Reconstruct(samples, unitWeights(79))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 days, got %d", s.Len())
	}
	for i, v := range s.Scores {
		if !approx(v, 100) {
			t.Fatalf("day %d: expected corrected 100, got %f", i, v)
		}
	}
}

func TestReconstructRejectsZeroStep(t *testing.T) {
	r := &Reconstructor{}
	_, err := r.Reconstruct(map[census.Dimension][]Sample{0: {{Timestamp: 0}}}, unitWeights(0))
	if err == nil {
		t.Fatal("expected error for zero step")
	}
}

// #endregion reconstruct-tests

// #region fetch-tests
type stubSource struct {
	asked   []census.Dimension
	samples map[census.Dimension][]Sample
	err     error
}

func (s *stubSource) CensusHistory(_ context.Context, scales []census.Dimension) (map[census.Dimension][]Sample, error) {
	s.asked = scales
	return s.samples, s.err
}

func TestFetchDefaultsScales(t *testing.T) {
	src := &stubSource{samples: map[census.Dimension][]Sample{
		0: {{Timestamp: 0, Value: 1}, {Timestamp: 3 * Day, Value: 1}},
	}}
	s, err := NewReconstructor().Fetch(context.Background(), src, nil, unitWeights(0))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(src.asked) != len(DefaultScales()) {
		t.Fatalf("expected default scales, got %d", len(src.asked))
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 days, got %d", s.Len())
	}
}

func TestFetchPropagatesSourceError(t *testing.T) {
	boom := errors.New("status 429")
	src := &stubSource{err: boom}
	_, err := NewReconstructor().Fetch(context.Background(), src, []census.Dimension{0}, unitWeights(0))
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestDefaultScales(t *testing.T) {
	scales := DefaultScales()
	if len(scales) != 79 {
		t.Fatalf("expected 79 scales, got %d", len(scales))
	}
	for _, d := range scales {
		if d == 65 || d == 66 || (d > 79 && d != 85) {
			t.Fatalf("unexpected scale %d", d)
		}
	}
	if scales[len(scales)-1] != 85 {
		t.Fatalf("expected 85 last, got %d", scales[len(scales)-1])
	}
}

// #endregion fetch-tests
