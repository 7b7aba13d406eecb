// Package layoff describes the layoff-event dataset: its column names, the
// logical column types of the canonical table, and the typed Event produced
// at the end of the cleaning pipeline.
package layoff

// Column names of the raw extract and of the canonical table.
const (
	Company             = "company"
	Location            = "location"
	Industry            = "industry"
	TotalLaidOff        = "total_laid_off"
	PercentageLaidOff   = "percentage_laid_off"
	Date                = "date"
	Stage               = "stage"
	Country             = "country"
	FundsRaisedMillions = "funds_raised_millions"

	// RankColumn is the transient per-identity row number assigned by the
	// deduplicator and removed by the finalizer.
	RankColumn = "row_num"
)

// Columns lists every semantic column in table order. The full tuple is the
// identity key used for duplicate detection.
var Columns = []string{
	Company,
	Location,
	Industry,
	TotalLaidOff,
	PercentageLaidOff,
	Date,
	Stage,
	Country,
	FundsRaisedMillions,
}

// TextColumns are the columns read as free text, where a "none" literal in
// any case means absent.
var TextColumns = []string{
	Company,
	Location,
	Industry,
	PercentageLaidOff,
	Date,
	Stage,
	Country,
}

// Types maps each canonical column to its logical type ("text", "int",
// "date"). Storage backends translate these into SQL types.
var Types = map[string]string{
	Company:             "text",
	Location:            "text",
	Industry:            "text",
	TotalLaidOff:        "int",
	PercentageLaidOff:   "text",
	Date:                "date",
	Stage:               "text",
	Country:             "text",
	FundsRaisedMillions: "int",
}
