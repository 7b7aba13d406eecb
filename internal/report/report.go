// Package report computes read-only aggregates over canonical layoff events:
// totals per dimension, the dense-ranked top companies per year, a running
// monthly total and an overview of extremes.
//
// Every function treats its input as immutable, so reports can be computed
// concurrently over the same slice (see Build).
package report

import (
	"sort"
	"strconv"
	"time"

	"layoffs/internal/layoff"
)

// Dimension names a grouping key for SumBy.
type Dimension string

const (
	ByCompany  Dimension = "company"
	ByCountry  Dimension = "country"
	ByIndustry Dimension = "industry"
	ByStage    Dimension = "stage"
	ByYear     Dimension = "year"
	ByMonth    Dimension = "month"
)

// Dimensions lists every supported dimension in report order.
var Dimensions = []Dimension{ByCompany, ByIndustry, ByCountry, ByStage, ByYear, ByMonth}

// Total is the sum of total_laid_off for one group.
type Total struct {
	Key   string `json:"key"`
	Total int64  `json:"total"`
}

// Ranked is one row of the top-companies-per-year report.
type Ranked struct {
	Year    int    `json:"year"`
	Rank    int    `json:"rank"`
	Company string `json:"company"`
	Total   int64  `json:"total"`
}

// Monthly is a month's total and the cumulative total up to that month.
type Monthly struct {
	Month      string `json:"month"`
	Total      int64  `json:"total"`
	Cumulative int64  `json:"cumulative"`
}

// Shutdown is a company that laid off its whole workforce.
type Shutdown struct {
	Company             string `json:"company"`
	FundsRaisedMillions *int64 `json:"funds_raised_millions"`
}

// Summary holds dataset-wide extremes.
type Summary struct {
	Events          int        `json:"events"`
	MaxTotalLaidOff *int64     `json:"max_total_laid_off"`
	MaxPercentage   *string    `json:"max_percentage_laid_off"`
	FirstDate       *time.Time `json:"first_date"`
	LastDate        *time.Time `json:"last_date"`
	FullShutdowns   []Shutdown `json:"full_shutdowns"`
}

func dimensionKey(dim Dimension) func(layoff.Event) (string, bool) {
	text := func(get func(layoff.Event) *string) func(layoff.Event) (string, bool) {
		return func(e layoff.Event) (string, bool) {
			if p := get(e); p != nil {
				return *p, true
			}
			return "", false
		}
	}
	switch dim {
	case ByCompany:
		return text(func(e layoff.Event) *string { return e.Company })
	case ByCountry:
		return text(func(e layoff.Event) *string { return e.Country })
	case ByIndustry:
		return text(func(e layoff.Event) *string { return e.Industry })
	case ByStage:
		return text(func(e layoff.Event) *string { return e.Stage })
	case ByYear:
		return func(e layoff.Event) (string, bool) {
			if e.Date == nil {
				return "", false
			}
			return strconv.Itoa(e.Date.Year()), true
		}
	case ByMonth:
		return func(e layoff.Event) (string, bool) {
			if e.Date == nil {
				return "", false
			}
			return e.Date.Format("2006-01"), true
		}
	}
	return nil
}

// SumBy sums total_laid_off per value of dim. Events without a total or
// without a value for dim are skipped. Years are ordered newest first, months
// chronologically, everything else by total descending then key.
// An unknown dimension yields nil.
func SumBy(events []layoff.Event, dim Dimension) []Total {
	key := dimensionKey(dim)
	if key == nil {
		return nil
	}

	sums := make(map[string]int64)
	for _, e := range events {
		if e.TotalLaidOff == nil {
			continue
		}
		k, ok := key(e)
		if !ok {
			continue
		}
		sums[k] += *e.TotalLaidOff
	}

	out := make([]Total, 0, len(sums))
	for k, v := range sums {
		out = append(out, Total{Key: k, Total: v})
	}
	switch dim {
	case ByYear:
		sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	case ByMonth:
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	default:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Total != out[j].Total {
				return out[i].Total > out[j].Total
			}
			return out[i].Key < out[j].Key
		})
	}
	return out
}

// TopPerYear sums totals per (company, year), dense-ranks companies within
// each year by total descending and keeps ranks up to n. Tied totals share a
// rank and the next distinct total takes the following rank. n <= 0 keeps
// every rank. Rows are ordered by year, rank, then company.
func TopPerYear(events []layoff.Event, n int) []Ranked {
	type cy struct {
		company string
		year    int
	}
	sums := make(map[cy]int64)
	for _, e := range events {
		if e.Company == nil || e.Date == nil || e.TotalLaidOff == nil {
			continue
		}
		sums[cy{*e.Company, e.Date.Year()}] += *e.TotalLaidOff
	}

	rows := make([]Ranked, 0, len(sums))
	for k, v := range sums {
		rows = append(rows, Ranked{Year: k.year, Company: k.company, Total: v})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Company < b.Company
	})

	for i := range rows {
		switch {
		case i == 0 || rows[i-1].Year != rows[i].Year:
			rows[i].Rank = 1
		case rows[i-1].Total == rows[i].Total:
			rows[i].Rank = rows[i-1].Rank
		default:
			rows[i].Rank = rows[i-1].Rank + 1
		}
	}

	out := rows[:0]
	for _, r := range rows {
		if n <= 0 || r.Rank <= n {
			out = append(out, r)
		}
	}
	return out
}

// RollingMonthly returns monthly totals in chronological order with a
// running cumulative sum.
func RollingMonthly(events []layoff.Event) []Monthly {
	months := SumBy(events, ByMonth)
	out := make([]Monthly, len(months))
	var running int64
	for i, m := range months {
		running += m.Total
		out[i] = Monthly{Month: m.Key, Total: m.Total, Cumulative: running}
	}
	return out
}

// Overview reports the largest layoff, the largest percentage, the date
// range and the companies that laid off 100% of staff, best funded first.
func Overview(events []layoff.Event) Summary {
	s := Summary{Events: len(events)}
	var maxPct float64
	for _, e := range events {
		if e.TotalLaidOff != nil && (s.MaxTotalLaidOff == nil || *e.TotalLaidOff > *s.MaxTotalLaidOff) {
			v := *e.TotalLaidOff
			s.MaxTotalLaidOff = &v
		}
		if pct, ok := percentage(e); ok {
			if s.MaxPercentage == nil || pct > maxPct {
				v := *e.PercentageLaidOff
				s.MaxPercentage, maxPct = &v, pct
			}
			if pct == 1 && e.Company != nil {
				s.FullShutdowns = append(s.FullShutdowns, Shutdown{Company: *e.Company, FundsRaisedMillions: e.FundsRaisedMillions})
			}
		}
		if e.Date != nil {
			d := *e.Date
			if s.FirstDate == nil || d.Before(*s.FirstDate) {
				s.FirstDate = &d
			}
			if s.LastDate == nil || d.After(*s.LastDate) {
				s.LastDate = &d
			}
		}
	}

	sort.SliceStable(s.FullShutdowns, func(i, j int) bool {
		a, b := s.FullShutdowns[i].FundsRaisedMillions, s.FullShutdowns[j].FundsRaisedMillions
		switch {
		case (a == nil) != (b == nil):
			return a != nil
		case a != nil && *a != *b:
			return *a > *b
		}
		return s.FullShutdowns[i].Company < s.FullShutdowns[j].Company
	})
	return s
}

func percentage(e layoff.Event) (float64, bool) {
	if e.PercentageLaidOff == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(*e.PercentageLaidOff, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
