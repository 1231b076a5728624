package valuation

import (
	"math"

	"github.com/hfcipriano/stock-radar-br/internal/fundamentals"
)

// Intrinsic estimates the intrinsic value of a stock under the given method.
// It returns nil when the record lacks the inputs the method requires; a
// missing intrinsic value is not an error, the stock is simply not rankable.
func Intrinsic(rec fundamentals.Record, method Method) *float64 {
	switch method.Kind {
	case KindGraham:
		if positive(rec.EPS) && positive(rec.BookValuePerShare) {
			return ptr(math.Sqrt(22.5 * *rec.EPS * *rec.BookValuePerShare))
		}

	case KindPETarget:
		if positive(rec.EPS) {
			return ptr(*rec.EPS * method.TargetPE)
		}

	case KindEVEbitdaTarget:
		if positive(rec.EBITDA) && rec.SharesOutstanding != nil {
			// Target EV = multiple * EBITDA; back out the implied price:
			// (EV - debt + cash) / shares
			targetEV := method.TargetMultiple * *rec.EBITDA
			return ptr((targetEV - orZero(rec.TotalDebt) + orZero(rec.Cash)) / *rec.SharesOutstanding)
		}
	}

	return nil
}

// MarginOfSafety is the fractional discount of price below intrinsic value.
// Present only when the intrinsic value is present and strictly positive.
func MarginOfSafety(price float64, intrinsic *float64) *float64 {
	if intrinsic == nil || *intrinsic <= 0 {
		return nil
	}
	return ptr((*intrinsic - price) / *intrinsic)
}

// Round4 rounds half-up to 4 decimal places, matching how displayed
// values are formatted everywhere in the screener output.
func Round4(v float64) float64 {
	return math.Floor(v*10000+0.5) / 10000
}

// Round4Ptr rounds an optional value, passing nil through
func Round4Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(Round4(*v))
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr(v float64) *float64 {
	return &v
}
