package leaverequest

import (
	"fmt"
	"time"

	"go-leave/internal/leavetype"
	"go-leave/internal/shared/apperror"
)

// RuleContext carries everything a category rule may inspect. Now is the
// clock of the submission, not a date on the request.
type RuleContext struct {
	RequestedDays  int
	AllocationDays int
	Now            time.Time
}

// RequestRule validates one category-specific constraint and returns a
// field-level message on violation, nil otherwise. Rules are pure.
type RequestRule func(RuleContext) *apperror.FieldError

// annualSecondHalfRule: Annual Leave submitted July–December must span at
// least 10 days.
func annualSecondHalfRule(rc RuleContext) *apperror.FieldError {
	if m := rc.Now.Month(); m >= time.July && m <= time.December && rc.RequestedDays < 10 {
		return &apperror.FieldError{
			Field:   "number_of_days",
			Message: "Annual Leave from July to December must be at least 10 days",
		}
	}
	return nil
}

// boundedByAllocationRule: Sick and Miscellaneous Leave must request between
// 1 day and the full allocation.
func boundedByAllocationRule(rc RuleContext) *apperror.FieldError {
	if rc.RequestedDays < 1 || rc.RequestedDays > rc.AllocationDays {
		return &apperror.FieldError{
			Field:   "number_of_days",
			Message: fmt.Sprintf("you can request between 1 and %d day(s) for this leave type", rc.AllocationDays),
		}
	}
	return nil
}

// requestRules maps category name to its rule. New categories register a
// function here instead of growing a dispatch chain.
var requestRules = map[string]RequestRule{
	leavetype.NameAnnual:        annualSecondHalfRule,
	leavetype.NameSick:          boundedByAllocationRule,
	leavetype.NameMiscellaneous: boundedByAllocationRule,
}

// RuleFor returns the category rule for a type name, or nil when the
// category has no extra rule.
func RuleFor(typeName string) RequestRule {
	return requestRules[typeName]
}
