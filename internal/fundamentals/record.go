package fundamentals

// Record is the canonical, fully-typed fundamentals record for one ticker.
// Optional numerics are pointers: nil means the value was not available
// anywhere in the payload, never a zero standing in for "unknown".
//
// MarketCap, EnterpriseValue, EVToEBITDA, NetMarginPct and ROEPct are
// always recomputed from their components by Normalize, never taken
// straight from the payload.
type Record struct {
	Ticker string
	Name   string

	Price             *float64
	EPS               *float64
	BookValuePerShare *float64
	PERatio           *float64
	PBRatio           *float64
	SharesOutstanding *float64
	TotalDebt         *float64
	Cash              *float64
	EBITDA            *float64
	Equity            *float64
	NetIncome         *float64
	Revenue           *float64

	// Derived
	MarketCap       *float64
	EnterpriseValue *float64
	EVToEBITDA      *float64
	NetMarginPct    *float64
	ROEPct          *float64
}

// HasPositivePrice reports whether the record is priceable at all.
// Records without it are not rankable downstream.
func (r Record) HasPositivePrice() bool {
	return r.Price != nil && *r.Price > 0
}

func ptr(v float64) *float64 {
	return &v
}
