// Package milk turns flat milking-session and milk-sale records into a
// per-date report: yields grouped by cow, date totals, and the
// produced-versus-sold reconciliation for each production date.
//
// Aggregate is a pure function. It never touches storage and performs no
// validation beyond rejecting timestamps it cannot bucket; callers are
// expected to load, scope and validate the records beforehand.
package milk

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the bucket key format used for every date in a Report.
const DateLayout = "2006-01-02"

// ErrMalformedInput is returned when a session or sale carries a timestamp
// that cannot be placed on a calendar date.
var ErrMalformedInput = errors.New("milk: malformed input")

// Session is one milking of one cow.
type Session struct {
	CowID      string
	Identifier string
	Name       string
	Yield      decimal.Decimal
	At         time.Time
}

// Sale is one quantity of milk sold to one customer.
type Sale struct {
	Customer string
	Quantity decimal.Decimal
	At       time.Time
}

// Options tune the shape of the report.
type Options struct {
	// CowID restricts production to a single cow. Sales are never filtered.
	CowID string
	// SortByTotal orders cows and customers within a date by descending
	// total instead of first appearance. Ties keep first-appearance order.
	SortByTotal bool
}

// CowTotal is the summed yield of one cow on one date.
type CowTotal struct {
	CowID      string          `json:"cow_id"`
	Identifier string          `json:"identifier"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

// CustomerTotal is the summed quantity sold to one customer on one date.
type CustomerTotal struct {
	Customer string          `json:"customer"`
	Total    decimal.Decimal `json:"total"`
}

// Day is the reconciliation of one production date.
type Day struct {
	Date      string          `json:"date"`
	Cows      []CowTotal      `json:"cows"`
	Total     decimal.Decimal `json:"total"`
	Sold      decimal.Decimal `json:"sold"`
	Remaining decimal.Decimal `json:"remaining"`
	Oversold  bool            `json:"oversold"`
	Sales     []CustomerTotal `json:"sales"`
}

// Report is the aggregated view. Days are ordered newest first. The grand
// totals cover only the listed days; sales on dates without production are
// reported separately in Unmatched.
type Report struct {
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Days      []Day           `json:"days"`
	Produced  decimal.Decimal `json:"produced"`
	Sold      decimal.Decimal `json:"sold"`
	Remaining decimal.Decimal `json:"remaining"`
	Unmatched decimal.Decimal `json:"unmatched_sold"`
}

type dayBucket struct {
	cows  map[string]*CowTotal
	seq   []string
	total decimal.Decimal
}

type saleBucket struct {
	customers map[string]*CustomerTotal
	seq       []string
	total     decimal.Decimal
}

// Aggregate builds a Report from sessions and sales. Each timestamp is
// bucketed by the calendar date of its own location, so callers convert to
// the reporting timezone first.
func Aggregate(sessions []Session, sales []Sale, opts Options) (*Report, error) {
	days := make(map[string]*dayBucket)
	for _, s := range sessions {
		if s.At.IsZero() {
			return nil, ErrMalformedInput
		}
		if opts.CowID != "" && s.CowID != opts.CowID {
			continue
		}
		key := s.At.Format(DateLayout)
		d := days[key]
		if d == nil {
			d = &dayBucket{cows: make(map[string]*CowTotal)}
			days[key] = d
		}
		c := d.cows[s.CowID]
		if c == nil {
			c = &CowTotal{CowID: s.CowID, Identifier: s.Identifier, Name: s.Name}
			d.cows[s.CowID] = c
			d.seq = append(d.seq, s.CowID)
		}
		c.Total = c.Total.Add(s.Yield)
		d.total = d.total.Add(s.Yield)
	}

	sold := make(map[string]*saleBucket)
	for _, s := range sales {
		if s.At.IsZero() {
			return nil, ErrMalformedInput
		}
		key := s.At.Format(DateLayout)
		b := sold[key]
		if b == nil {
			b = &saleBucket{customers: make(map[string]*CustomerTotal)}
			sold[key] = b
		}
		c := b.customers[s.Customer]
		if c == nil {
			c = &CustomerTotal{Customer: s.Customer}
			b.customers[s.Customer] = c
			b.seq = append(b.seq, s.Customer)
		}
		c.Total = c.Total.Add(s.Quantity)
		b.total = b.total.Add(s.Quantity)
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	rep := &Report{Days: make([]Day, 0, len(keys))}
	for _, k := range keys {
		d := days[k]
		day := Day{
			Date:  k,
			Cows:  make([]CowTotal, 0, len(d.seq)),
			Total: d.total,
			Sales: []CustomerTotal{},
		}
		for _, id := range d.seq {
			day.Cows = append(day.Cows, *d.cows[id])
		}
		if opts.SortByTotal {
			sort.SliceStable(day.Cows, func(i, j int) bool {
				return day.Cows[i].Total.GreaterThan(day.Cows[j].Total)
			})
		}

		if b := sold[k]; b != nil {
			day.Sold = b.total
			for _, name := range b.seq {
				day.Sales = append(day.Sales, *b.customers[name])
			}
			if opts.SortByTotal {
				sort.SliceStable(day.Sales, func(i, j int) bool {
					return day.Sales[i].Total.GreaterThan(day.Sales[j].Total)
				})
			}
		}
		day.Remaining = day.Total.Sub(day.Sold)
		day.Oversold = day.Remaining.IsNegative()

		rep.Produced = rep.Produced.Add(day.Total)
		rep.Sold = rep.Sold.Add(day.Sold)
		rep.Days = append(rep.Days, day)
	}
	rep.Remaining = rep.Produced.Sub(rep.Sold)

	for k, b := range sold {
		if _, ok := days[k]; !ok {
			rep.Unmatched = rep.Unmatched.Add(b.total)
		}
	}
	return rep, nil
}
