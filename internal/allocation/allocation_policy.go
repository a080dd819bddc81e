package allocation

import (
	"time"

	"go-leave/internal/leavetype"
)

// EntitlementFunc computes the entitlement days for one category at
// allocation time. now is the clock of the allocation run, not any date on
// the period itself.
type EntitlementFunc func(defaultDays int, now time.Time) int

// FullEntitlement grants the category's full default (Sick, Parental,
// Miscellaneous and any category without a registered policy).
func FullEntitlement(defaultDays int, _ time.Time) int {
	return defaultDays
}

// AnnualEntitlement grants 11 days when the run falls in January–June (the
// second half of the July–June fiscal cycle) and 21 otherwise. The rule is
// keyed off the calendar month of the run, not the resolved period's
// boundaries, so re-running later in the same period can yield a different
// count. Intentional behavior, kept as a swappable policy.
func AnnualEntitlement(_ int, now time.Time) int {
	if m := now.Month(); m >= time.January && m <= time.June {
		return 11
	}
	return 21
}

// entitlementPolicies maps category name to its entitlement rule. New rules
// are added by registering a function, not by editing a dispatch chain.
var entitlementPolicies = map[string]EntitlementFunc{
	leavetype.NameAnnual: AnnualEntitlement,
}

// EntitlementFor returns the registered policy for a category name, or
// FullEntitlement when none is registered.
func EntitlementFor(typeName string) EntitlementFunc {
	if fn, ok := entitlementPolicies[typeName]; ok {
		return fn
	}
	return FullEntitlement
}
