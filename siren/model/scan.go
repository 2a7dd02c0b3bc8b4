package model

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Line returns steps parameter vectors equal to base except that the named
// parameter runs linearly from lo to hi.
func (m *Model) Line(name string, lo, hi float64, steps int, base []float64) ([][]float64, error) {
	if err := m.checkLen(len(base)); err != nil {
		return nil, err
	}
	idx := m.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("unknown parameter %q; model parameters: %v", name, m.names)
	}
	if steps < 2 {
		return nil, fmt.Errorf("line needs at least 2 steps, got %d", steps)
	}
	points := make([][]float64, steps)
	for i := range points {
		p := append([]float64(nil), base...)
		p[idx] = lo + (hi-lo)*float64(i)/float64(steps-1)
		points[i] = p
	}
	return points, nil
}

// Scan evaluates LogDensity at every point with at most workers concurrent
// evaluations (workers <= 0 means unbounded). Results are in point order.
// The first error, or cancellation of ctx, stops the scan.
func (m *Model) Scan(ctx context.Context, points [][]float64, workers int) ([]float64, error) {
	out := make([]float64, len(points))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, theta := range points {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := m.LogDensity(theta)
			if err != nil {
				return fmt.Errorf("point %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logrus.Debugf("scanned %d parameter points with %d worker(s)", len(points), workers)
	return out, nil
}
