package layoff

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"layoffs/pkg/records"
)

// Event is one canonical layoff event. Nil pointers are absent values.
type Event struct {
	Company             *string    `json:"company"`
	Location            *string    `json:"location"`
	Industry            *string    `json:"industry"`
	TotalLaidOff        *int64     `json:"total_laid_off" validate:"omitempty,gte=0"`
	PercentageLaidOff   *string    `json:"percentage_laid_off" validate:"omitempty,fraction"`
	Date                *time.Time `json:"date"`
	Stage               *string    `json:"stage"`
	Country             *string    `json:"country"`
	FundsRaisedMillions *int64     `json:"funds_raised_millions" validate:"omitempty,gte=0"`
}

// Values returns the event as a row aligned with Columns.
func (e Event) Values() []any {
	return []any{
		strOrNil(e.Company),
		strOrNil(e.Location),
		strOrNil(e.Industry),
		intOrNil(e.TotalLaidOff),
		strOrNil(e.PercentageLaidOff),
		dateOrNil(e.Date),
		strOrNil(e.Stage),
		strOrNil(e.Country),
		intOrNil(e.FundsRaisedMillions),
	}
}

// FromRecord converts a finalized record into an Event. Empty strings become
// absent. Count columns accept int, int64 or a decimal string; date accepts
// time.Time only. Any other shape is an error.
func FromRecord(r records.Record) (Event, error) {
	var (
		e   Event
		err error
	)
	e.Company = textField(r, Company)
	e.Location = textField(r, Location)
	e.Industry = textField(r, Industry)
	e.PercentageLaidOff = textField(r, PercentageLaidOff)
	e.Stage = textField(r, Stage)
	e.Country = textField(r, Country)

	if e.TotalLaidOff, err = intField(r, TotalLaidOff); err != nil {
		return Event{}, err
	}
	if e.FundsRaisedMillions, err = intField(r, FundsRaisedMillions); err != nil {
		return Event{}, err
	}

	switch v := r[Date].(type) {
	case nil:
	case time.Time:
		d := v
		e.Date = &d
	case string:
		if v != "" {
			return Event{}, fmt.Errorf("%s: untyped value %q", Date, v)
		}
	default:
		return Event{}, fmt.Errorf("%s: unsupported type %T", Date, v)
	}
	return e, nil
}

// FromRecords converts every record. It stops at the first conversion error
// and reports the offending index.
func FromRecords(in []records.Record) ([]Event, error) {
	out := make([]Event, 0, len(in))
	for i, r := range in {
		e, err := FromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Validator checks canonical events against their struct tags.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator with the "fraction" tag registered.
func NewValidator() (*Validator, error) {
	v := validator.New()
	if err := v.RegisterValidation("fraction", validateFraction); err != nil {
		return nil, fmt.Errorf("register fraction validation: %w", err)
	}
	return &Validator{v: v}, nil
}

// Validate returns a non-nil error describing every failed constraint.
func (v *Validator) Validate(e Event) error {
	return v.v.Struct(e)
}

// validateFraction accepts decimal strings in [0,1].
func validateFraction(fl validator.FieldLevel) bool {
	f, err := strconv.ParseFloat(fl.Field().String(), 64)
	if err != nil {
		return false
	}
	return f >= 0 && f <= 1
}

func textField(r records.Record, field string) *string {
	s, ok := r[field].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func intField(r records.Record, field string) (*int64, error) {
	var n int64
	switch v := r[field].(type) {
	case nil:
		return nil, nil
	case int64:
		n = v
	case int:
		n = int64(v)
	case string:
		if v == "" {
			return nil, nil
		}
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		n = p
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", field, v)
	}
	return &n, nil
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intOrNil(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateOrNil(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}
