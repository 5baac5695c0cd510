// Package layout packs ordered, variable-aspect items into justified rows
// spanning the viewport width. It runs a shortest-path dynamic program over
// row break points, minimising the squared deviation of each row's
// accumulated aspect ratio from the ideal.
package layout

import (
	"errors"

	"github.com/sorenkal/gridfeed/internal/gallery"
)

// Row is a contiguous index range of one section's items, justified to a
// common render height. Widths holds the scaled width of each item.
type Row struct {
	Start  int
	End    int
	Height float64
	Widths []float64
}

// ErrInfeasible reports that no admissible sequence of row breaks exists
// under the strict shrink/stretch bounds.
var ErrInfeasible = errors.New("layout: no admissible row partition")

// Packer carries the packing parameters. The ratios are relative to the
// ideal aspect (viewport width / ideal row height).
type Packer struct {
	IdealHeight float64
	Shrink      float64
	Stretch     float64
	SafeStretch float64
}

// NewPacker derives packing parameters from the engine tuning.
func NewPacker(t gallery.Tuning) Packer {
	return Packer{
		IdealHeight: t.IdealRowHeight,
		Shrink:      t.ShrinkRatio,
		Stretch:     t.StretchRatio,
		SafeStretch: t.SafeStretchRatio,
	}
}

// Partition splits items into justified rows for the given width. With safe
// set, the shrink bound is waived and the stretch bound relaxed, which makes
// a solution always exist. Identical input yields identical rows.
func (p Packer) Partition(items []gallery.Item, width float64, safe bool) ([]Row, error) {
	n := len(items)
	if n == 0 {
		return nil, nil
	}
	if width <= 0 || p.IdealHeight <= 0 {
		return nil, ErrInfeasible
	}

	idealAspect := width / p.IdealHeight
	shrink := p.Shrink * idealAspect
	stretch := p.Stretch * idealAspect
	if safe {
		stretch = p.SafeStretch * idealAspect
	}

	aspects := make([]float64, n)
	for i, it := range items {
		aspects[i] = it.AspectRatio()
	}

	const inf = 1e30
	cost := make([]float64, n+1)
	prev := make([]int, n+1)
	for i := 1; i <= n; i++ {
		cost[i] = inf
		prev[i] = -1
	}

	for v := 1; v <= n; v++ {
		acc := 0.0
		for u := v - 1; u >= 0; u-- {
			acc += aspects[u]
			if cost[u] < inf {
				if v == n && acc < idealAspect {
					// An unfilled last row is admitted at zero cost so a
					// sparse trailing section is not over-penalised.
					if cost[u] < cost[v] {
						cost[v] = cost[u]
						prev[v] = u
					}
				} else if (acc <= stretch || v-u == 1) && (acc >= shrink || safe || acc > stretch) {
					if c := cost[u] + sq(acc-idealAspect); c < cost[v] {
						cost[v] = c
						prev[v] = u
					}
				}
			}
			// Extending the row further back only grows the aspect.
			if acc > stretch && v-u > 1 {
				break
			}
		}
	}

	if prev[n] < 0 {
		return nil, ErrInfeasible
	}

	var breaks []int
	for v := n; v > 0; v = prev[v] {
		breaks = append(breaks, v)
	}

	rows := make([]Row, 0, len(breaks))
	start := 0
	for i := len(breaks) - 1; i >= 0; i-- {
		end := breaks[i]
		acc := 0.0
		for j := start; j < end; j++ {
			acc += aspects[j]
		}
		height := width / acc
		if end == n && acc < idealAspect {
			height = p.IdealHeight
		}
		widths := make([]float64, end-start)
		for j := start; j < end; j++ {
			widths[j-start] = height * aspects[j]
		}
		rows = append(rows, Row{Start: start, End: end, Height: height, Widths: widths})
		start = end
	}
	return rows, nil
}

// Pack partitions strictly and falls back to safe mode when the strict
// bounds admit no solution. The fallback always succeeds.
func (p Packer) Pack(items []gallery.Item, width float64) []Row {
	rows, err := p.Partition(items, width, false)
	if err == nil {
		return rows
	}
	rows, err = p.Partition(items, width, true)
	if err != nil {
		// Only reachable with degenerate geometry (zero width/height).
		return nil
	}
	return rows
}

// TotalHeight sums the render heights of the given rows.
func TotalHeight(rows []Row) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.Height
	}
	return total
}

func sq(x float64) float64 { return x * x }
