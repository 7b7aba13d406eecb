package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var titles = map[Dimension]string{
	ByCompany:  "Laid off by company",
	ByIndustry: "Laid off by industry",
	ByCountry:  "Laid off by country",
	ByStage:    "Laid off by stage",
	ByYear:     "Laid off by year",
	ByMonth:    "Laid off by month",
}

// WriteText renders set as aligned plain-text tables with grouped digits.
// Per-dimension tables are cut to limit rows; limit <= 0 prints all rows.
func WriteText(w io.Writer, set Set, limit int) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	o := set.Overview
	fmt.Fprintln(tw, "Overview")
	p.Fprintf(tw, "  events\t%d\n", o.Events)
	fmt.Fprintf(tw, "  max laid off\t%s\n", intOrDash(p, o.MaxTotalLaidOff))
	fmt.Fprintf(tw, "  max percentage\t%s\n", strOrDash(o.MaxPercentage))
	fmt.Fprintf(tw, "  first date\t%s\n", dateOrDash(o.FirstDate))
	fmt.Fprintf(tw, "  last date\t%s\n", dateOrDash(o.LastDate))
	p.Fprintf(tw, "  full shutdowns\t%d\n", len(o.FullShutdowns))
	for _, s := range cut(o.FullShutdowns, limit) {
		fmt.Fprintf(tw, "    %s\t%s\n", s.Company, intOrDash(p, s.FundsRaisedMillions))
	}

	for _, dim := range Dimensions {
		rows, ok := set.Totals[dim]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "\n%s\n", titles[dim])
		fmt.Fprintf(tw, "  %s\tTOTAL\n", strings.ToUpper(string(dim)))
		for _, r := range cut(rows, limit) {
			p.Fprintf(tw, "  %s\t%d\n", r.Key, r.Total)
		}
	}

	fmt.Fprintln(tw, "\nTop companies per year")
	fmt.Fprintln(tw, "  YEAR\tRANK\tCOMPANY\tTOTAL")
	for _, r := range set.TopPerYear {
		p.Fprintf(tw, "  %s\t%d\t%s\t%d\n", strconv.Itoa(r.Year), r.Rank, r.Company, r.Total)
	}

	fmt.Fprintln(tw, "\nRolling monthly total")
	fmt.Fprintln(tw, "  MONTH\tTOTAL\tCUMULATIVE")
	for _, m := range set.Rolling {
		p.Fprintf(tw, "  %s\t%d\t%d\n", m.Month, m.Total, m.Cumulative)
	}
	return tw.Flush()
}

// WriteJSON renders set as indented JSON.
func WriteJSON(w io.Writer, set Set) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}

func cut[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func intOrDash(p *message.Printer, v *int64) string {
	if v == nil {
		return "-"
	}
	return p.Sprintf("%d", *v)
}

func strOrDash(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func dateOrDash(v *time.Time) string {
	if v == nil {
		return "-"
	}
	return v.Format(time.DateOnly)
}
