package layout

import (
	"math"
	"reflect"
	"testing"

	"github.com/sorenkal/gridfeed/internal/gallery"
)

func testPacker() Packer {
	return NewPacker(gallery.DefaultTuning())
}

func squares(n, size int) []gallery.Item {
	items := make([]gallery.Item, n)
	for i := range items {
		items[i] = gallery.Item{ID: string(rune('a' + i)), Width: size, Height: size}
	}
	return items
}

func assertCoverage(t *testing.T, rows []Row, n int) {
	t.Helper()
	at := 0
	for i, r := range rows {
		if r.Start != at {
			t.Fatalf("row %d starts at %d, want %d", i, r.Start, at)
		}
		if r.End <= r.Start {
			t.Fatalf("row %d is empty: %#v", i, r)
		}
		if len(r.Widths) != r.End-r.Start {
			t.Fatalf("row %d has %d widths for %d items", i, len(r.Widths), r.End-r.Start)
		}
		at = r.End
	}
	if at != n {
		t.Fatalf("rows cover [0,%d), want [0,%d)", at, n)
	}
}

func TestFiveSquaresFixture(t *testing.T) {
	// Five 400x400 items at width 1000, ideal height 300: ideal aspect is
	// 10/3, so the optimal split is a justified row of three followed by an
	// unfilled terminal row of two at exactly the ideal height.
	p := testPacker()
	rows, err := p.Partition(squares(5, 400), 1000, false)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	assertCoverage(t, rows, 5)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %#v", len(rows), rows)
	}
	if rows[0].End != 3 {
		t.Fatalf("expected first break after item 3, got %d", rows[0].End)
	}
	if math.Abs(rows[0].Height-1000.0/3.0) > 1e-9 {
		t.Fatalf("expected first row height 1000/3, got %v", rows[0].Height)
	}
	if rows[1].Height != 300 {
		t.Fatalf("expected terminal row at ideal height 300, got %v", rows[1].Height)
	}
	for _, w := range rows[0].Widths {
		if math.Abs(w-1000.0/3.0) > 1e-9 {
			t.Fatalf("expected square widths to equal row height, got %v", w)
		}
	}
	total := TotalHeight(rows)
	if math.Abs(total-(1000.0/3.0+300)) > 1e-9 {
		t.Fatalf("unexpected total height %v", total)
	}
}

func TestPartitionIdempotent(t *testing.T) {
	p := testPacker()
	items := []gallery.Item{
		{ID: "a", Width: 400, Height: 300},
		{ID: "b", Width: 300, Height: 400},
		{ID: "c", Width: 1200, Height: 400},
		{ID: "d", Width: 400, Height: 400},
		{ID: "e", Width: 350, Height: 500},
		{ID: "f", Width: 640, Height: 480},
	}
	first, err := p.Partition(items, 1000, false)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	second, err := p.Partition(items, 1000, false)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical input produced different rows:\n%#v\n%#v", first, second)
	}
}

func TestSingleOversizedItemIsItsOwnRow(t *testing.T) {
	p := testPacker()
	// A panorama wider than the stretch bound must still break.
	rows, err := p.Partition([]gallery.Item{{ID: "pano", Width: 5000, Height: 400}}, 1000, false)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	assertCoverage(t, rows, 1)
	if math.Abs(rows[0].Height-1000/12.5) > 1e-9 {
		t.Fatalf("expected height width/aspect, got %v", rows[0].Height)
	}
}

func TestPackFallsBackToSafe(t *testing.T) {
	p := testPacker()
	// Two items whose only non-terminal break violates the shrink bound in
	// strict mode: a tall sliver cannot fill a row and cannot join one.
	items := []gallery.Item{
		{ID: "a", Width: 100, Height: 1000},
		{ID: "b", Width: 4500, Height: 1000},
	}
	rows := p.Pack(items, 1000)
	if rows == nil {
		t.Fatalf("expected safe fallback to produce rows")
	}
	assertCoverage(t, rows, 2)
}

func TestEmptyInput(t *testing.T) {
	p := testPacker()
	rows, err := p.Partition(nil, 1000, false)
	if err != nil || rows != nil {
		t.Fatalf("expected nil rows for empty input, got %#v, %v", rows, err)
	}
}

// bruteForceCost enumerates every admissible row partition and returns the
// minimum total cost, mirroring the admissibility rule independently.
func bruteForceCost(aspects []float64, width, idealHeight float64) float64 {
	idealAspect := width / idealHeight
	shrink, stretch := 0.8*idealAspect, 1.2*idealAspect
	n := len(aspects)

	var rec func(start int) float64
	rec = func(start int) float64 {
		if start == n {
			return 0
		}
		best := math.Inf(1)
		acc := 0.0
		for end := start + 1; end <= n; end++ {
			acc += aspects[end-1]
			var cost float64
			switch {
			case end == n && acc < idealAspect:
				cost = 0
			case acc > stretch && end-start > 1:
				continue
			case acc < shrink && acc <= stretch:
				continue
			default:
				cost = (acc - idealAspect) * (acc - idealAspect)
			}
			if rest := rec(end); cost+rest < best {
				best = cost + rest
			}
		}
		return best
	}
	return rec(0)
}

func rowCost(rows []Row, aspects []float64, width, idealHeight float64) float64 {
	idealAspect := width / idealHeight
	total := 0.0
	for _, r := range rows {
		acc := 0.0
		for i := r.Start; i < r.End; i++ {
			acc += aspects[i]
		}
		if r.End == len(aspects) && acc < idealAspect {
			continue
		}
		total += (acc - idealAspect) * (acc - idealAspect)
	}
	return total
}

func TestPartitionMinimality(t *testing.T) {
	p := testPacker()
	cases := [][]gallery.Item{
		squares(5, 400),
		squares(7, 300),
		{
			{ID: "a", Width: 400, Height: 300},
			{ID: "b", Width: 300, Height: 400},
			{ID: "c", Width: 1200, Height: 400},
			{ID: "d", Width: 400, Height: 400},
			{ID: "e", Width: 350, Height: 500},
			{ID: "f", Width: 640, Height: 480},
			{ID: "g", Width: 500, Height: 500},
		},
	}
	for ci, items := range cases {
		aspects := make([]float64, len(items))
		for i, it := range items {
			aspects[i] = it.AspectRatio()
		}
		rows, err := p.Partition(items, 1000, false)
		if err != nil {
			t.Fatalf("case %d: partition: %v", ci, err)
		}
		assertCoverage(t, rows, len(items))
		got := rowCost(rows, aspects, 1000, p.IdealHeight)
		want := bruteForceCost(aspects, 1000, p.IdealHeight)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("case %d: cost %v, brute force minimum %v", ci, got, want)
		}
	}
}
