package ranking

import (
	"context"
	"errors"
	"math"
	"testing"

	"treasurepicker/internal/imaging"
)

func gradient(width, height int) *imaging.Gray {
	g := imaging.NewGray(width, height)
	for y := range height {
		for x := range width {
			g.Set(x, y, float64((x*31+y*17)%256))
		}
	}
	return g
}

func inverted(src *imaging.Gray) *imaging.Gray {
	out := src.Clone()
	for i, v := range out.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}

func flatGray(width, height int, value float64) *imaging.Gray {
	g := imaging.NewGray(width, height)
	for i := range g.Pix {
		g.Pix[i] = value
	}
	return g
}

func TestClassifyReliableAndAmbiguous(t *testing.T) {
	tests := []struct {
		name          string
		scores        []Score
		wantBest      string
		wantReliable  bool
		wantAmbiguous string
	}{
		{
			name:          "near tie above threshold",
			scores:        []Score{{"loc_A.png", 0.70}, {"loc_B.png", 0.69}},
			wantBest:      "loc_A.png",
			wantReliable:  true,
			wantAmbiguous: "loc_B.png",
		},
		{
			name:         "clear loser below threshold",
			scores:       []Score{{"loc_A.png", 0.40}, {"loc_B.png", 0.10}},
			wantBest:     "loc_A.png",
			wantReliable: false,
		},
		{
			name:          "ambiguity does not need reliability",
			scores:        []Score{{"loc_A.png", 0.30}, {"loc_B.png", 0.29}},
			wantBest:      "loc_A.png",
			wantReliable:  false,
			wantAmbiguous: "loc_B.png",
		},
		{
			name:          "gap exactly at delta is ambiguous",
			scores:        []Score{{"loc_A.png", 0.70}, {"loc_B.png", 0.67}},
			wantBest:      "loc_A.png",
			wantReliable:  true,
			wantAmbiguous: "loc_B.png",
		},
		{
			name:         "threshold is inclusive",
			scores:       []Score{{"loc_A.png", 0.65}, {"loc_B.png", 0.10}},
			wantBest:     "loc_A.png",
			wantReliable: true,
		},
		{
			name:         "single candidate never ambiguous",
			scores:       []Score{{"loc_A.png", 0.99}},
			wantBest:     "loc_A.png",
			wantReliable: true,
		},
		{
			name:         "negative scores compete",
			scores:       []Score{{"loc_A.png", -0.20}, {"loc_B.png", -0.90}},
			wantBest:     "loc_A.png",
			wantReliable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Classify(tt.scores, DefaultPolicy())
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if verdict.Best.ID != tt.wantBest {
				t.Fatalf("best = %q, want %q", verdict.Best.ID, tt.wantBest)
			}
			if verdict.Reliable != tt.wantReliable {
				t.Fatalf("reliable = %v, want %v", verdict.Reliable, tt.wantReliable)
			}
			switch {
			case tt.wantAmbiguous == "" && verdict.AmbiguousWith != nil:
				t.Fatalf("unexpected ambiguity with %+v", *verdict.AmbiguousWith)
			case tt.wantAmbiguous != "" && verdict.AmbiguousWith == nil:
				t.Fatalf("expected ambiguity with %q", tt.wantAmbiguous)
			case tt.wantAmbiguous != "" && verdict.AmbiguousWith.ID != tt.wantAmbiguous:
				t.Fatalf("ambiguous with %q, want %q", verdict.AmbiguousWith.ID, tt.wantAmbiguous)
			}
		})
	}
}

func TestClassifyEmpty(t *testing.T) {
	if _, err := Classify(nil, DefaultPolicy()); !errors.Is(err, ErrEmptyGallery) {
		t.Fatalf("expected ErrEmptyGallery, got %v", err)
	}
}

func TestRankOrdersByScore(t *testing.T) {
	query := gradient(16, 12)
	gallery := []Candidate{
		{ID: "loc_inverse.png", Image: inverted(query)},
		{ID: "loc_flat.png", Image: flatGray(8, 6, 42)},
		{ID: "loc_same.png", Image: query.Clone()},
	}

	verdict, err := Rank(context.Background(), query, gallery, DefaultPolicy())
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}
	wantOrder := []string{"loc_same.png", "loc_flat.png", "loc_inverse.png"}
	if len(verdict.Scores) != len(wantOrder) {
		t.Fatalf("expected %d scores, got %d", len(wantOrder), len(verdict.Scores))
	}
	for i, id := range wantOrder {
		if verdict.Scores[i].ID != id {
			t.Fatalf("position %d = %q, want %q", i, verdict.Scores[i].ID, id)
		}
	}
	if math.Abs(verdict.Best.Score-1) > 1e-9 {
		t.Fatalf("identical candidate should score 1, got %v", verdict.Best.Score)
	}
	if verdict.Scores[1].Score != 0 {
		t.Fatalf("flat candidate should score exactly 0, got %v", verdict.Scores[1].Score)
	}
	if !verdict.Reliable || verdict.Ambiguous() {
		t.Fatalf("expected reliable unambiguous verdict, got %+v", verdict)
	}
	if verdict.Status() != "reliable" {
		t.Fatalf("unexpected status %q", verdict.Status())
	}
}

func TestRankIndependentOfInputOrder(t *testing.T) {
	query := gradient(10, 10)
	base := []Candidate{
		{ID: "loc_c.png", Image: query.Clone()},
		{ID: "loc_a.png", Image: query.Clone()},
		{ID: "loc_b.png", Image: inverted(query)},
		{ID: "loc_d.png", Image: gradient(20, 5)},
	}
	permutations := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}

	var first Verdict
	for n, perm := range permutations {
		gallery := make([]Candidate, len(perm))
		for i, j := range perm {
			gallery[i] = base[j]
		}
		policy := DefaultPolicy()
		policy.Workers = n + 1

		verdict, err := Rank(context.Background(), query, gallery, policy)
		if err != nil {
			t.Fatalf("permutation %v: Rank returned error: %v", perm, err)
		}
		if n == 0 {
			first = verdict
			continue
		}
		for i := range first.Scores {
			if verdict.Scores[i] != first.Scores[i] {
				t.Fatalf("permutation %v: position %d = %+v, want %+v", perm, i, verdict.Scores[i], first.Scores[i])
			}
		}
	}

	if first.Best.ID != "loc_a.png" {
		t.Fatalf("ties should resolve to the lexicographically smaller id, got %q", first.Best.ID)
	}
	if first.AmbiguousWith == nil || first.AmbiguousWith.ID != "loc_c.png" {
		t.Fatalf("expected tie partner loc_c.png to be flagged, got %+v", first.AmbiguousWith)
	}
}

func TestRankDoesNotMutateInputs(t *testing.T) {
	query := gradient(6, 4)
	candidate := gradient(12, 8)
	queryBefore := query.Clone()
	candidateBefore := candidate.Clone()

	if _, err := Rank(context.Background(), query, []Candidate{{ID: "loc_x.png", Image: candidate}}, DefaultPolicy()); err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}
	for i := range query.Pix {
		if query.Pix[i] != queryBefore.Pix[i] {
			t.Fatalf("query mutated at %d", i)
		}
	}
	if candidate.Width != 12 || candidate.Height != 8 {
		t.Fatalf("candidate resized in place: %dx%d", candidate.Width, candidate.Height)
	}
	for i := range candidate.Pix {
		if candidate.Pix[i] != candidateBefore.Pix[i] {
			t.Fatalf("candidate mutated at %d", i)
		}
	}
}

func TestRankErrors(t *testing.T) {
	query := gradient(4, 4)

	if _, err := Rank(context.Background(), nil, []Candidate{{ID: "a", Image: query}}, DefaultPolicy()); !errors.Is(err, ErrQueryMissing) {
		t.Fatalf("expected ErrQueryMissing for nil query, got %v", err)
	}
	if _, err := Rank(context.Background(), &imaging.Gray{}, []Candidate{{ID: "a", Image: query}}, DefaultPolicy()); !errors.Is(err, ErrQueryMissing) {
		t.Fatalf("expected ErrQueryMissing for empty query, got %v", err)
	}
	if _, err := Rank(context.Background(), query, nil, DefaultPolicy()); !errors.Is(err, ErrEmptyGallery) {
		t.Fatalf("expected ErrEmptyGallery, got %v", err)
	}

	_, err := Rank(context.Background(), query, []Candidate{
		{ID: "loc_ok.png", Image: query},
		{ID: "loc_broken.png", Image: nil},
	}, DefaultPolicy())
	var candErr *CandidateError
	if !errors.As(err, &candErr) {
		t.Fatalf("expected CandidateError, got %T %v", err, err)
	}
	if candErr.ID != "loc_broken.png" {
		t.Fatalf("unexpected candidate id %q", candErr.ID)
	}
}

func TestRankHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	query := gradient(4, 4)
	_, err := Rank(ctx, query, []Candidate{{ID: "a", Image: query}}, DefaultPolicy())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPolicyNormalized(t *testing.T) {
	p := Policy{Threshold: 3, DeltaSecond: -1}.normalized()
	d := DefaultPolicy()
	if p.Threshold != d.Threshold || p.DeltaSecond != d.DeltaSecond {
		t.Fatalf("out-of-range values should fall back to defaults, got %+v", p)
	}
	if p.Workers <= 0 {
		t.Fatalf("workers should default to a positive count, got %d", p.Workers)
	}
	if p.Interpolation != imaging.InterpolationArea {
		t.Fatalf("unexpected interpolation %q", p.Interpolation)
	}

	custom := Policy{Threshold: -0.5, DeltaSecond: 0, Workers: 2, Interpolation: imaging.InterpolationBicubic}.normalized()
	if custom.Threshold != -0.5 || custom.DeltaSecond != 0 || custom.Workers != 2 {
		t.Fatalf("valid values should be kept, got %+v", custom)
	}
}
