package decision

import (
	"fmt"
	"strings"

	"github.com/verifox/VeriFox/internal/pkg/ledger"
)

const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
	// StatusUnderReview is reserved for manual workflows and never produced
	// by the automatic rule.
	StatusUnderReview = "under_review"
)

// Thresholds are the minimum activity requirements a wallet must meet.
type Thresholds struct {
	MinTotal    int
	MinCredited int
	MinUnique   int
}

// Decision is the outcome of applying the threshold rule to a counter set.
type Decision struct {
	Status        string
	FailureReason string
}

// Approved reports whether the decision passed the threshold rule.
func (d Decision) Approved() bool {
	return d.Status == StatusApproved
}

// Decide applies the threshold rule. The failure reason names each failing
// predicate in the fixed order total, credited, unique so output stays
// deterministic; the exact wording is part of the API contract.
func Decide(c ledger.Counters, t Thresholds) Decision {
	totalFails := c.Total < t.MinTotal
	creditedFails := c.Credited < t.MinCredited
	uniqueFails := c.UniqueCounterparties < t.MinUnique

	if !totalFails && !creditedFails && !uniqueFails {
		return Decision{Status: StatusApproved}
	}

	var parts []string
	switch {
	case totalFails && creditedFails:
		parts = append(parts, fmt.Sprintf("Insufficient total (%d/%d) and credited (%d/%d) transactions",
			c.Total, t.MinTotal, c.Credited, t.MinCredited))
	case totalFails:
		parts = append(parts, fmt.Sprintf("Insufficient transactions (%d/%d)", c.Total, t.MinTotal))
	case creditedFails:
		parts = append(parts, fmt.Sprintf("Insufficient credited transactions (%d/%d)", c.Credited, t.MinCredited))
	}
	if uniqueFails {
		parts = append(parts, fmt.Sprintf("Insufficient unique wallets (%d/%d)", c.UniqueCounterparties, t.MinUnique))
	}

	return Decision{Status: StatusRejected, FailureReason: strings.Join(parts, "; ")}
}
