package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/client"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/domain"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/repository"
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

var ErrInvalidRequest = errors.New("invalid order request")

// ConfirmationMessage accompanies every successfully persisted order.
const ConfirmationMessage = "Order placed successfully. Inventory reserved."

type OrderService interface {
	PlaceOrder(ctx context.Context, productID, quantity int64) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
}

type orderService struct {
	pool       *pgxpool.Pool
	orderRepo  repository.OrderRepository
	outboxRepo worker.OutboxRepository
	inventory  client.InventoryAPI
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewOrderService(
	pool *pgxpool.Pool,
	orderRepo repository.OrderRepository,
	outboxRepo worker.OutboxRepository,
	inventory client.InventoryAPI,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		pool:       pool,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		inventory:  inventory,
		logger:     logger,
		tracer:     otel.Tracer("order_service"),
	}
}

// PlaceOrder runs the check-then-commit exchange with the inventory
// service. The availability check on the snapshot is advisory only: another
// order may deplete stock between the read and the reserve call, so the
// reserve call re-derives the plan from live state and its verdict is the
// one that counts. No order row is written on any failure path.
func (s *orderService) PlaceOrder(ctx context.Context, productID, quantity int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("product_id", productID),
		attribute.Int64("quantity", quantity),
	)

	if productID <= 0 || quantity <= 0 {
		mylogger.Warn(
			ctx,
			s.logger,
			"Rejecting invalid order request",
			zap.Int64("product_id", productID),
			zap.Int64("quantity", quantity),
		)

		return nil, ErrInvalidRequest
	}

	snapshot, err := s.inventory.GetInventory(ctx, productID)
	if err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Inventory check failed",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)

		return nil, err
	}

	if available := snapshot.TotalQuantity(); available < quantity {
		mylogger.Warn(
			ctx,
			s.logger,
			"Insufficient inventory at advisory check",
			zap.Int64("product_id", productID),
			zap.Int64("available", available),
			zap.Int64("requested", quantity),
		)

		return nil, &client.InsufficientStockError{
			Available: available,
			Requested: quantity,
		}
	}

	reserved, err := s.inventory.Reserve(ctx, productID, quantity)
	if err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Reservation failed",
			zap.Int64("product_id", productID),
			zap.Int64("quantity", quantity),
			zap.Error(err),
		)

		return nil, err
	}

	// The committed batch IDs come from the reserve response, not from the
	// snapshot: under concurrent access the two can legitimately differ.
	batchIDs := make([]int64, 0, len(reserved.ReservedBatches))
	for _, b := range reserved.ReservedBatches {
		batchIDs = append(batchIDs, b.BatchID)
	}

	order := &domain.Order{
		ProductID:        productID,
		ProductName:      snapshot.ProductName,
		Quantity:         quantity,
		Status:           domain.OrderStatusPlaced,
		ReservedBatchIDs: domain.FormatBatchIDs(batchIDs),
	}

	if err := s.persistOrder(ctx, order, batchIDs); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("product_id", productID),
		zap.Int64("quantity", quantity),
	)

	return order, nil
}

func (s *orderService) persistOrder(ctx context.Context, order *domain.Order, batchIDs []int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		mylogger.Error(ctx, s.logger, "Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
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
				zap.String("method_name", "persistOrder"),
			)
		}
	}()

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return err
	}

	eventEnvelope := map[string]any{
		"event": "OrderPlaced",
		"payload": map[string]any{
			"order_id":   order.ID,
			"product_id": order.ProductID,
			"quantity":   order.Quantity,
			"batch_ids":  batchIDs,
			"placed_at":  time.Now().UTC(),
		},
	}

	payloadBytes, err := json.Marshal(eventEnvelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Order",
		AggregateID:   fmt.Sprintf("%d", order.ID),
		EventType:     "OrderPlaced",
		Payload:       payloadBytes,
		Topic:         "order_events",
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to save outbox event", zap.Error(err))
		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	res, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			s.logger.Warn("order not found", zap.Int64("order_id", id))
			return nil, err
		}

		s.logger.Error("error getting order", zap.Error(err))
		return nil, fmt.Errorf("error getting order by id: %w", err)
	}

	return res, nil
}
