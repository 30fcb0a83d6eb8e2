package repository

import (
	"context"
	"fmt"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/domain"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type BatchRepository interface {
	FindByProduct(ctx context.Context, productID int64) ([]domain.Batch, error)
	FindAvailableForUpdate(ctx context.Context, tx pgx.Tx, productID int64) ([]domain.Batch, error)
	DeductBatch(ctx context.Context, tx pgx.Tx, batchID, quantity int64) error
}

type batchRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewBatchRepository(pool *pgxpool.Pool, logger *zap.Logger) BatchRepository {
	return &batchRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("contract/batch_repo"),
	}
}

func (r *batchRepo) FindByProduct(ctx context.Context, productID int64) ([]domain.Batch, error) {
	ctx, span := r.tracer.Start(ctx, "BatchRepository.FindByProduct")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
	)

	query := `
		SELECT batch_id, product_id, product_name, quantity, expiry_date
		FROM inventory_batches
		WHERE product_id = $1
		ORDER BY expiry_date ASC, batch_id ASC;
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to query batches",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error selecting batches: %w", err)
	}
	defer rows.Close()

	return scanBatches(rows)
}

// FindAvailableForUpdate locks the product's non-empty batch rows for the
// lifetime of the surrounding transaction. Concurrent reserve calls on the
// same product queue up here instead of double-spending the same stock.
func (r *batchRepo) FindAvailableForUpdate(ctx context.Context, tx pgx.Tx, productID int64) ([]domain.Batch, error) {
	ctx, span := r.tracer.Start(ctx, "BatchRepository.FindAvailableForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
	)

	query := `
		SELECT batch_id, product_id, product_name, quantity, expiry_date
		FROM inventory_batches
		WHERE product_id = $1 AND quantity > 0
		ORDER BY expiry_date ASC, batch_id ASC
		FOR UPDATE;
	`

	rows, err := tx.Query(ctx, query, productID)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Failed to lock batches",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error locking batches: %w", err)
	}
	defer rows.Close()

	return scanBatches(rows)
}

func (r *batchRepo) DeductBatch(ctx context.Context, tx pgx.Tx, batchID, quantity int64) error {
	ctx, span := r.tracer.Start(ctx, "BatchRepository.DeductBatch")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("batch_id", batchID),
		attribute.Int64("quantity", quantity),
	)

	query := `
		UPDATE inventory_batches
		SET quantity = quantity - $2
		WHERE batch_id = $1
			AND quantity >= $2;
	`

	commandTag, err := tx.Exec(ctx, query, batchID, quantity)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error deducting batch",
			zap.Int64("batch_id", batchID),
			zap.Int64("quantity", quantity),
		)

		return fmt.Errorf("error deducting batch %d: %w", batchID, err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrReservationConflict
	}

	return nil
}

func scanBatches(rows pgx.Rows) ([]domain.Batch, error) {
	var batches []domain.Batch
	for rows.Next() {
		var b domain.Batch
		if err := rows.Scan(
			&b.BatchID,
			&b.ProductID,
			&b.ProductName,
			&b.Quantity,
			&b.ExpiryDate,
		); err != nil {
			return nil, fmt.Errorf("error scanning batch: %w", err)
		}

		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return batches, nil
}
