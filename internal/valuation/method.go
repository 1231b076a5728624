package valuation

import (
	"fmt"
	"strings"
)

// Kind identifies a valuation method variant
type Kind int

const (
	// KindGraham is the classic Graham number: sqrt(22.5 * EPS * BVPS)
	KindGraham Kind = iota
	// KindPETarget prices the stock at a target P/E multiple of earnings
	KindPETarget
	// KindEVEbitdaTarget prices the stock off a target EV/EBITDA multiple
	KindEVEbitdaTarget
)

// Defaults applied when a variant parameter is missing or nonpositive
const (
	DefaultTargetPE     = 12.0
	DefaultTargetEVMult = 6.0
)

// Method is a valuation method plus its variant-specific parameters.
// It is stateless and selected per screening run.
type Method struct {
	Kind Kind

	// TargetPE is read only for KindPETarget
	TargetPE float64

	// TargetMultiple is read only for KindEVEbitdaTarget
	TargetMultiple float64
}

// Graham returns the parameterless Graham method
func Graham() Method {
	return Method{Kind: KindGraham}
}

// PETarget returns a P/E target method; nonpositive targets use the default
func PETarget(target float64) Method {
	if target <= 0 {
		target = DefaultTargetPE
	}
	return Method{Kind: KindPETarget, TargetPE: target}
}

// EVEbitdaTarget returns an EV/EBITDA target method; nonpositive targets use
// the default
func EVEbitdaTarget(target float64) Method {
	if target <= 0 {
		target = DefaultTargetEVMult
	}
	return Method{Kind: KindEVEbitdaTarget, TargetMultiple: target}
}

// Parse resolves a method name from the HTTP/CLI boundary. Parameters that
// do not apply to the named method are ignored.
func Parse(name string, peTarget, evTarget float64) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "graham":
		return Graham(), nil
	case "pe", "pe_target", "petarget":
		return PETarget(peTarget), nil
	case "ev_ebitda", "ev_ebitda_target", "evebitda":
		return EVEbitdaTarget(evTarget), nil
	default:
		return Method{}, fmt.Errorf("unknown valuation method: %q", name)
	}
}

// String returns the canonical method name
func (m Method) String() string {
	switch m.Kind {
	case KindGraham:
		return "graham"
	case KindPETarget:
		return "pe_target"
	case KindEVEbitdaTarget:
		return "ev_ebitda_target"
	default:
		return "unknown"
	}
}
