package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/domain"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/mylogger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("order_repository"),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", order.ProductID),
		attribute.Int64("quantity", order.Quantity),
	)

	query := `
		INSERT INTO orders (product_id, product_name, quantity, status, reserved_batch_ids)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_id, order_date;
	`

	err := tx.QueryRow(
		ctx,
		query,
		order.ProductID,
		order.ProductName,
		order.Quantity,
		order.Status,
		order.ReservedBatchIDs,
	).Scan(&order.ID, &order.OrderDate)
	if err != nil {
		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error creating order",
			zap.Int64("product_id", order.ProductID),
			zap.Error(err),
		)

		return fmt.Errorf("error creating order: %w", err)
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	query := `
		SELECT order_id, product_id, product_name, quantity, status, order_date, reserved_batch_ids
		FROM orders
		WHERE order_id = $1;
	`

	var res domain.Order
	if err := r.pool.QueryRow(ctx, query, id).
		Scan(
			&res.ID,
			&res.ProductID,
			&res.ProductName,
			&res.Quantity,
			&res.Status,
			&res.OrderDate,
			&res.ReservedBatchIDs,
		); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		mylogger.Error(
			ctx,
			r.logger,
			"Error getting order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting order: %w", err)
	}

	return &res, nil
}
