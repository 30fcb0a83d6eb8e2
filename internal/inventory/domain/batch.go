package domain

import "time"

// Batch is one dated lot of stock for a product. Quantity only ever goes
// down; a drained batch stays in the table as a ledger entry.
type Batch struct {
	BatchID     int64     `db:"batch_id"`
	ProductID   int64     `db:"product_id"`
	ProductName string    `db:"product_name"`
	Quantity    int64     `db:"quantity"`
	ExpiryDate  time.Time `db:"expiry_date"`
}

// Snapshot is the state of a product's batches at read time. It is
// recomputed on every read and never stored.
type Snapshot struct {
	ProductID   int64
	ProductName string
	Batches     []Batch
}

func (s *Snapshot) TotalQuantity() int64 {
	var total int64
	for _, b := range s.Batches {
		total += b.Quantity
	}

	return total
}
