package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/domain"
)

// Strategy decides the order in which batches are consumed. It is a closed
// set, so dispatch is exhaustive at compile time instead of going through a
// runtime lookup by name.
type Strategy int

const (
	// FIFO consumes earliest-expiring batches first.
	FIFO Strategy = iota
	// LIFO consumes latest-expiring batches first.
	LIFO
)

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "fifo":
		return FIFO, nil
	case "lifo":
		return LIFO, nil
	default:
		return FIFO, fmt.Errorf("unknown reservation strategy: %q", s)
	}
}

func (s Strategy) String() string {
	if s == LIFO {
		return "lifo"
	}

	return "fifo"
}

// Allocation is a single (batch, amount) deduction of a plan.
type Allocation struct {
	BatchID  int64
	Quantity int64
}

// Plan is the proposed set of deductions for one reservation request.
// Fulfilled is true iff the allocations add up to the requested quantity.
// An unfulfilled plan is informational only and must never be committed.
type Plan struct {
	Requested   int64
	Allocations []Allocation
	Fulfilled   bool
}

func (p Plan) Total() int64 {
	var total int64
	for _, a := range p.Allocations {
		total += a.Quantity
	}

	return total
}

// Sort orders batches in place by the strategy's comparison key.
// The sort is stable: batches sharing an expiry date keep their input order,
// which makes plans deterministic.
func (s Strategy) Sort(batches []domain.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if s == LIFO {
			return batches[i].ExpiryDate.After(batches[j].ExpiryDate)
		}

		return batches[i].ExpiryDate.Before(batches[j].ExpiryDate)
	})
}

// Select walks the batches in strategy order and takes
// min(batch.Quantity, remaining) from each until the request is covered or
// the batches run out. Zero-quantity batches never appear in the plan.
// Select is pure: it does not mutate its input.
func (s Strategy) Select(batches []domain.Batch, requested int64) Plan {
	ordered := make([]domain.Batch, len(batches))
	copy(ordered, batches)
	s.Sort(ordered)

	plan := Plan{Requested: requested}

	remaining := requested
	for _, batch := range ordered {
		if remaining <= 0 {
			break
		}

		if batch.Quantity <= 0 {
			continue
		}

		take := batch.Quantity
		if remaining < take {
			take = remaining
		}

		plan.Allocations = append(plan.Allocations, Allocation{
			BatchID:  batch.BatchID,
			Quantity: take,
		})
		remaining -= take
	}

	plan.Fulfilled = remaining == 0
	return plan
}
