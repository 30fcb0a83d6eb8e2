package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/mylogger"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/utils"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InventoryAPI is the order service's view of the inventory service.
// GetInventory feeds the advisory availability check; Reserve is the
// authoritative call that actually commits the deduction.
type InventoryAPI interface {
	GetInventory(ctx context.Context, productID int64) (*InventoryResponse, error)
	Reserve(ctx context.Context, productID, quantity int64) (*ReserveResponse, error)
}

type BatchDTO struct {
	BatchID    int64  `json:"batch_id"`
	Quantity   int64  `json:"quantity"`
	ExpiryDate string `json:"expiry_date"`
}

type InventoryResponse struct {
	ProductID   int64      `json:"product_id"`
	ProductName string     `json:"product_name"`
	Batches     []BatchDTO `json:"batches"`
}

func (r *InventoryResponse) TotalQuantity() int64 {
	var total int64
	for _, b := range r.Batches {
		total += b.Quantity
	}

	return total
}

type ReservedBatchDTO struct {
	BatchID  int64 `json:"batch_id"`
	Quantity int64 `json:"quantity"`
}

type ReserveResponse struct {
	Success         bool               `json:"success"`
	Message         string             `json:"message"`
	UpdatedQuantity int64              `json:"updated_quantity"`
	ReservedBatches []ReservedBatchDTO `json:"reserved_batches"`
	Available       *int64             `json:"available"`
	Requested       *int64             `json:"requested"`
}

type reserveRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type inventoryClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewInventoryClient(baseURL string, logger *zap.Logger) InventoryAPI {
	settings := gobreaker.Settings{
		Name:        "InventoryService",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &inventoryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
		tracer: otel.Tracer("inventory_client"),
	}
}

func (c *inventoryClient) GetInventory(ctx context.Context, productID int64) (*InventoryResponse, error) {
	ctx, span := c.tracer.Start(ctx, "InventoryClient.GetInventory", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	url := fmt.Sprintf("%s/inventory/%d", c.baseURL, productID)

	resp, err := utils.ExecuteWithBreaker(c.cb, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		return c.httpClient.Do(req)
	})
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, gobreaker.ErrOpenState) {
			mylogger.Warn(ctx, c.logger, "Circuit breaker open for inventory reads")
			return nil, fmt.Errorf("circuit breaker open: %w", ErrInventoryUnavailable)
		}

		mylogger.Warn(ctx, c.logger, "Inventory read failed", zap.Error(err))
		return nil, fmt.Errorf("get inventory: %v: %w", err, ErrInventoryUnavailable)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var result InventoryResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("decode inventory response: %v: %w", err, ErrInventoryUnavailable)
		}

		return &result, nil
	case http.StatusNotFound:
		return nil, ErrProductNotFound
	default:
		return nil, fmt.Errorf("inventory service returned status %d: %w", resp.StatusCode, ErrInventoryUnavailable)
	}
}

func (c *inventoryClient) Reserve(ctx context.Context, productID, quantity int64) (*ReserveResponse, error) {
	ctx, span := c.tracer.Start(ctx, "InventoryClient.Reserve", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	body, err := json.Marshal(reserveRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/inventory/update"

	resp, err := utils.ExecuteWithBreaker(c.cb, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

		return c.httpClient.Do(req)
	})
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, gobreaker.ErrOpenState) {
			mylogger.Warn(ctx, c.logger, "Circuit breaker open for inventory updates")
			return nil, fmt.Errorf("circuit breaker open: %w", ErrInventoryUnavailable)
		}

		mylogger.Warn(ctx, c.logger, "Inventory update failed", zap.Error(err))
		return nil, fmt.Errorf("reserve inventory: %v: %w", err, ErrInventoryUnavailable)
	}
	defer resp.Body.Close()

	var result ReserveResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("decode reserve response: %v: %w", err, ErrInventoryUnavailable)
	}

	if resp.StatusCode == http.StatusOK && result.Success {
		return &result, nil
	}

	if result.Available != nil && result.Requested != nil {
		return nil, &InsufficientStockError{
			Available: *result.Available,
			Requested: *result.Requested,
		}
	}

	if resp.StatusCode == http.StatusBadRequest && result.Message != "" {
		return nil, fmt.Errorf("inventory update rejected: %s", result.Message)
	}

	return nil, fmt.Errorf("inventory service returned status %d: %w", resp.StatusCode, ErrInventoryUnavailable)
}
