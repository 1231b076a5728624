package fundamentals

// Field names used by the quote API. Top-level fields come from the plain
// quote; the module objects carry the fundamentals.
const (
	fieldSymbol    = "symbol"
	fieldShortName = "shortName"
	fieldLongName  = "longName"

	fieldMarketPrice = "regularMarketPrice"
	fieldClose       = "close"

	fieldEPS       = "earningsPerShare"
	fieldBookValue = "bookValue"
	fieldPE        = "priceEarnings"
	fieldPB        = "priceToBook"
	fieldShares    = "sharesOutstanding"

	modulePrice         = "price"
	moduleKeyStatistics = "defaultKeyStatistics"
	moduleFinancialData = "financialData"
	moduleBalanceSheet  = "balanceSheetHistory"
	moduleIncome        = "incomeStatementHistory"

	listBalanceSheet = "balanceSheetStatements"
	listIncome       = "incomeStatementHistory"

	fieldEBITDA    = "ebitda"
	fieldTotalDebt = "totalDebt"
	fieldTotalCash = "totalCash"
	fieldCash      = "cash"
	fieldEquity    = "totalStockholderEquity"
	fieldRevenue   = "totalRevenue"
	fieldNetIncome = "netIncome"
)

// Normalize converts one raw payload into a canonical Record.
//
// Every logical field resolves through an ordered fallback chain; the first
// source that yields a usable value wins. Missing or malformed fields stay
// nil and never abort normalization.
func Normalize(p Payload) Record {
	rec := Record{
		Ticker: p.String(fieldSymbol),
		Name:   p.String(fieldShortName, fieldLongName),
	}

	// price: quote -> last close -> price module
	rec.Price = p.Number(fieldMarketPrice, fieldClose)
	if rec.Price == nil {
		if priceMod := p.Sub(modulePrice); priceMod != nil {
			rec.Price = priceMod.Number(fieldMarketPrice)
		}
	}

	// eps / bvps / pe / pb: top level first, then key statistics
	dks := p.Sub(moduleKeyStatistics)
	rec.EPS = numberWithFallback(p, dks, fieldEPS)
	rec.BookValuePerShare = numberWithFallback(p, dks, fieldBookValue)
	rec.PERatio = numberWithFallback(p, dks, fieldPE)
	rec.PBRatio = numberWithFallback(p, dks, fieldPB)

	// shares outstanding only lives in key statistics
	if dks != nil {
		rec.SharesOutstanding = dks.Number(fieldShares)
	}

	// debt / cash / ebitda from financialData when present
	if fin := p.Sub(moduleFinancialData); fin != nil {
		rec.TotalDebt = fin.Number(fieldTotalDebt)
		rec.Cash = fin.Number(fieldTotalCash)
		rec.EBITDA = fin.Number(fieldEBITDA)
	}

	// most recent balance sheet: debt/cash fallback plus equity
	if bsh := p.Sub(moduleBalanceSheet); bsh != nil {
		if last := bsh.First(listBalanceSheet); last != nil {
			if rec.TotalDebt == nil {
				rec.TotalDebt = last.Number(fieldTotalDebt)
			}
			if rec.Cash == nil {
				rec.Cash = last.Number(fieldCash)
			}
			rec.Equity = last.Number(fieldEquity)
		}
	}

	// most recent income statement: revenue, net income, ebitda fallback
	if ish := p.Sub(moduleIncome); ish != nil {
		if last := ish.First(listIncome); last != nil {
			rec.Revenue = last.Number(fieldRevenue)
			rec.NetIncome = last.Number(fieldNetIncome)
			if rec.EBITDA == nil {
				rec.EBITDA = last.Number(fieldEBITDA)
			}
		}
	}

	computeDerived(&rec)

	// BVPS fallback via P/B, applied after everything else so a derived
	// book value never feeds other computations.
	if rec.BookValuePerShare == nil && rec.PBRatio != nil && *rec.PBRatio > 0 && rec.Price != nil {
		rec.BookValuePerShare = ptr(*rec.Price / *rec.PBRatio)
	}

	return rec
}

// computeDerived fills in the metrics that are never read from the payload.
func computeDerived(rec *Record) {
	if rec.Price != nil && rec.SharesOutstanding != nil {
		rec.MarketCap = ptr(*rec.Price * *rec.SharesOutstanding)
	}

	// EV substitutes zero for a missing market cap. That conflates
	// "unknown" with "zero" and yields a standalone-meaningless EV, but
	// downstream consumers expect exactly this value.
	ev := orZero(rec.MarketCap) + orZero(rec.TotalDebt) - orZero(rec.Cash)
	rec.EnterpriseValue = ptr(ev)

	if rec.EBITDA != nil && *rec.EBITDA != 0 {
		rec.EVToEBITDA = ptr(ev / *rec.EBITDA)
	}

	if rec.NetIncome != nil && rec.Revenue != nil && *rec.Revenue != 0 {
		rec.NetMarginPct = ptr(*rec.NetIncome / *rec.Revenue * 100)
	}

	if rec.NetIncome != nil && rec.Equity != nil && *rec.Equity != 0 {
		rec.ROEPct = ptr(*rec.NetIncome / *rec.Equity * 100)
	}
}

// numberWithFallback reads key from the top level, then from the sub-object.
func numberWithFallback(p, sub Payload, key string) *float64 {
	if v := p.Number(key); v != nil {
		return v
	}
	if sub != nil {
		return sub.Number(key)
	}
	return nil
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
