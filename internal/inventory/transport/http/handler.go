package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/service"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/strategy"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/mylogger"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const expiryDateLayout = "2006-01-02"

type InventoryHandler struct {
	service  service.InventoryService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewInventoryHandler(service service.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type batchDTO struct {
	BatchID    int64  `json:"batch_id"`
	Quantity   int64  `json:"quantity"`
	ExpiryDate string `json:"expiry_date"`
}

type inventoryResponse struct {
	ProductID   int64      `json:"product_id"`
	ProductName string     `json:"product_name"`
	Batches     []batchDTO `json:"batches"`
}

type updateInventoryInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

type reservedBatchDTO struct {
	BatchID  int64 `json:"batch_id"`
	Quantity int64 `json:"quantity"`
}

type updateInventoryResponse struct {
	Success         bool               `json:"success"`
	Message         string             `json:"message"`
	UpdatedQuantity int64              `json:"updated_quantity,omitempty"`
	ReservedBatches []reservedBatchDTO `json:"reserved_batches,omitempty"`
	Available       *int64             `json:"available,omitempty"`
	Requested       *int64             `json:"requested,omitempty"`
}

func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	ctx := c.UserContext()

	idStr := c.Params("productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		mylogger.Warn(
			ctx,
			h.logger,
			"invalid product id",
			zap.String("id", idStr),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "product id is invalid",
		})
	}

	snapshot, err := h.service.GetInventory(ctx, productID)
	if err != nil {
		status := mapErrorStatus(err)

		mylogger.Warn(
			ctx,
			h.logger,
			"get inventory failed",
			zap.Int64("product_id", productID),
			zap.Int("http_code", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	batches := make([]batchDTO, 0, len(snapshot.Batches))
	for _, b := range snapshot.Batches {
		batches = append(batches, batchDTO{
			BatchID:    b.BatchID,
			Quantity:   b.Quantity,
			ExpiryDate: b.ExpiryDate.Format(expiryDateLayout),
		})
	}

	return c.JSON(inventoryResponse{
		ProductID:   snapshot.ProductID,
		ProductName: snapshot.ProductName,
		Batches:     batches,
	})
}

func (h *InventoryHandler) UpdateInventory(c *fiber.Ctx) error {
	ctx := c.UserContext()

	input := new(updateInventoryInput)
	if err := c.BodyParser(input); err != nil {
		mylogger.Warn(ctx, h.logger, "failed to parse update body", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(updateInventoryResponse{
			Success: false,
			Message: "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			mylogger.Warn(
				ctx,
				h.logger,
				"update inventory validation failed",
				zap.Any("details", utils.FormatValidationError(err)),
			)
		}

		return c.Status(fiber.StatusBadRequest).JSON(updateInventoryResponse{
			Success: false,
			Message: "product_id and quantity must be positive",
		})
	}

	allocations, err := h.service.Reserve(ctx, input.ProductID, input.Quantity)
	if err != nil {
		return h.reserveError(c, input, err)
	}

	reserved := make([]reservedBatchDTO, 0, len(allocations))
	for _, a := range allocations {
		reserved = append(reserved, reservedBatchDTO{
			BatchID:  a.BatchID,
			Quantity: a.Quantity,
		})
	}

	mylogger.Info(
		ctx,
		h.logger,
		"inventory updated",
		zap.Int64("product_id", input.ProductID),
		zap.Int64("quantity", input.Quantity),
	)

	return c.JSON(updateInventoryResponse{
		Success:         true,
		Message:         "Inventory updated successfully",
		UpdatedQuantity: input.Quantity,
		ReservedBatches: reserved,
	})
}

func (h *InventoryHandler) reserveError(c *fiber.Ctx, input *updateInventoryInput, err error) error {
	status := mapErrorStatus(err)

	mylogger.Warn(
		c.UserContext(),
		h.logger,
		"reserve failed",
		zap.Int64("product_id", input.ProductID),
		zap.Int64("quantity", input.Quantity),
		zap.Int("http_code", status),
		zap.Error(err),
	)

	response := updateInventoryResponse{
		Success: false,
		Message: err.Error(),
	}

	var insufficient *repository.InsufficientStockError
	if errors.As(err, &insufficient) {
		response.Available = &insufficient.Available
		response.Requested = &insufficient.Requested
	}

	return c.Status(status).JSON(response)
}

func RegisterRoutes(app *fiber.App, h *InventoryHandler, strat strategy.Strategy) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"strategy": strat.String(),
			"time":     time.Now().UTC(),
		})
	})

	inventory := app.Group("/inventory")
	inventory.Get("/:productId", h.GetInventory)
	inventory.Post("/update", h.UpdateInventory)
}
