package domain

import (
	"strconv"
	"strings"
	"time"
)

type OrderStatus string

// PLACED is the only state an order can reach today; the column is kept
// wider than one value so fulfilment states can land later without a
// schema change.
const OrderStatusPlaced OrderStatus = "PLACED"

const batchIDDelimiter = ","

// Order is an append-only ledger row. It is created only after the
// inventory service confirmed the reservation, and never changes after.
type Order struct {
	ID               int64       `db:"order_id"`
	ProductID        int64       `db:"product_id"`
	ProductName      string      `db:"product_name"`
	Quantity         int64       `db:"quantity"`
	Status           OrderStatus `db:"status"`
	OrderDate        time.Time   `db:"order_date"`
	ReservedBatchIDs string      `db:"reserved_batch_ids"`
}

// BatchIDs parses the delimited reserved_batch_ids column back into IDs,
// preserving consumption order.
func (o *Order) BatchIDs() []int64 {
	if o.ReservedBatchIDs == "" {
		return nil
	}

	parts := strings.Split(o.ReservedBatchIDs, batchIDDelimiter)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}

		ids = append(ids, id)
	}

	return ids
}

func FormatBatchIDs(batchIDs []int64) string {
	parts := make([]string, 0, len(batchIDs))
	for _, id := range batchIDs {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	return strings.Join(parts, batchIDDelimiter)
}
