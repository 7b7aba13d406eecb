package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"layoffs/internal/layoff"
)

// Options selects report parameters.
type Options struct {
	// TopN is the number of dense ranks kept per year; <= 0 keeps all.
	TopN int
}

// Set is every report computed for one canonical event set.
type Set struct {
	Overview   Summary               `json:"overview"`
	Totals     map[Dimension][]Total `json:"totals"`
	TopPerYear []Ranked              `json:"top_per_year"`
	Rolling    []Monthly             `json:"rolling_monthly"`
}

// Build computes all reports concurrently. events must not be modified
// while Build runs.
func Build(ctx context.Context, events []layoff.Event, opt Options) (Set, error) {
	var (
		set    Set
		totals = make([][]Total, len(Dimensions))
	)

	g, ctx := errgroup.WithContext(ctx)
	for i, dim := range Dimensions {
		i, dim := i, dim
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			totals[i] = SumBy(events, dim)
			return nil
		})
	}
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set.TopPerYear = TopPerYear(events, opt.TopN)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set.Rolling = RollingMonthly(events)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		set.Overview = Overview(events)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Set{}, fmt.Errorf("report: %w", err)
	}

	set.Totals = make(map[Dimension][]Total, len(Dimensions))
	for i, dim := range Dimensions {
		set.Totals[dim] = totals[i]
	}
	return set, nil
}
