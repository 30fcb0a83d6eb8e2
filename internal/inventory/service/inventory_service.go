package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/domain"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/strategy"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/mylogger"
	outboxDomain "github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/outbox/domain"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

type InventoryService interface {
	GetInventory(ctx context.Context, productID int64) (*domain.Snapshot, error)
	Reserve(ctx context.Context, productID, quantity int64) ([]strategy.Allocation, error)
}

type inventoryService struct {
	batchRepo  repository.BatchRepository
	outboxRepo worker.OutboxRepository
	pool       *pgxpool.Pool
	strategy   strategy.Strategy
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewInventoryService wires the reservation strategy in once at startup;
// every product is served with the same policy.
func NewInventoryService(
	batchRepo repository.BatchRepository,
	outboxRepo worker.OutboxRepository,
	pool *pgxpool.Pool,
	strat strategy.Strategy,
	logger *zap.Logger,
) InventoryService {
	return &inventoryService{
		batchRepo:  batchRepo,
		outboxRepo: outboxRepo,
		pool:       pool,
		strategy:   strat,
		logger:     logger,
		tracer:     otel.Tracer("inventory_service"),
	}
}

func (s *inventoryService) GetInventory(ctx context.Context, productID int64) (*domain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.GetInventory")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
	)

	batches, err := s.batchRepo.FindByProduct(ctx, productID)
	if err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to fetch batches",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)

		return nil, err
	}

	if len(batches) == 0 {
		mylogger.Warn(ctx, s.logger, "No inventory for product", zap.Int64("product_id", productID))
		return nil, repository.ErrProductNotFound
	}

	s.strategy.Sort(batches)

	return &domain.Snapshot{
		ProductID:   productID,
		ProductName: batches[0].ProductName,
		Batches:     batches,
	}, nil
}

// Reserve recomputes the available batches from live state, plans the
// deductions and commits them as one unit of work. It never trusts any
// availability the caller may have observed earlier.
func (s *inventoryService) Reserve(ctx context.Context, productID, quantity int64) ([]strategy.Allocation, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryService.Reserve")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
		attribute.Int64("quantity", quantity),
		attribute.String("strategy", s.strategy.String()),
	)

	if quantity <= 0 {
		mylogger.Warn(
			ctx,
			s.logger,
			"Rejecting non-positive reserve quantity",
			zap.Int64("product_id", productID),
			zap.Int64("quantity", quantity),
		)

		return nil, ErrInvalidQuantity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(cleanupCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(
				cleanupCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
				zap.String("method_name", "Reserve"),
			)
		}
	}()

	batches, err := s.batchRepo.FindAvailableForUpdate(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	plan := s.strategy.Select(batches, quantity)

	if !plan.Fulfilled {
		var available int64
		for _, b := range batches {
			available += b.Quantity
		}

		mylogger.Warn(
			ctx,
			s.logger,
			"Insufficient stock for reservation",
			zap.Int64("product_id", productID),
			zap.Int64("available", available),
			zap.Int64("requested", quantity),
		)

		return nil, &repository.InsufficientStockError{
			Available: available,
			Requested: quantity,
		}
	}

	for _, allocation := range plan.Allocations {
		if err := s.batchRepo.DeductBatch(ctx, tx, allocation.BatchID, allocation.Quantity); err != nil {
			mylogger.Error(
				ctx,
				s.logger,
				"Failed to deduct batch",
				zap.Int64("batch_id", allocation.BatchID),
				zap.Int64("quantity", allocation.Quantity),
				zap.Error(err),
			)

			return nil, err
		}
	}

	if err := s.saveReservedEvent(ctx, tx, productID, quantity, plan.Allocations); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Stock reserved",
		zap.Int64("product_id", productID),
		zap.Int64("quantity", quantity),
		zap.Int("batches_touched", len(plan.Allocations)),
	)

	return plan.Allocations, nil
}

func (s *inventoryService) saveReservedEvent(
	ctx context.Context,
	tx pgx.Tx,
	productID, quantity int64,
	allocations []strategy.Allocation,
) error {
	batchIDs := make([]int64, 0, len(allocations))
	for _, a := range allocations {
		batchIDs = append(batchIDs, a.BatchID)
	}

	eventEnvelope := map[string]any{
		"event": "StockReserved",
		"payload": map[string]any{
			"product_id":  productID,
			"quantity":    quantity,
			"batch_ids":   batchIDs,
			"reserved_at": time.Now().UTC(),
		},
	}

	payloadBytes, err := json.Marshal(eventEnvelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Inventory",
		AggregateID:   fmt.Sprintf("%d", productID),
		EventType:     "StockReserved",
		Payload:       payloadBytes,
		Topic:         "inventory_events",
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to save outbox event", zap.Error(err))
		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	return nil
}
