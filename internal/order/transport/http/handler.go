package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/domain"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/service"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/mylogger"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const orderDateLayout = "2006-01-02"

type OrderHandler struct {
	service  service.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewOrderHandler(service service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type placeOrderInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

type orderResponse struct {
	OrderID          int64   `json:"order_id"`
	ProductID        int64   `json:"product_id"`
	ProductName      string  `json:"product_name"`
	Quantity         int64   `json:"quantity"`
	Status           string  `json:"status"`
	OrderDate        string  `json:"order_date"`
	ReservedBatchIDs []int64 `json:"reserved_batch_ids"`
	Message          string  `json:"message,omitempty"`
}

func toOrderResponse(order *domain.Order, message string) orderResponse {
	return orderResponse{
		OrderID:          order.ID,
		ProductID:        order.ProductID,
		ProductName:      order.ProductName,
		Quantity:         order.Quantity,
		Status:           string(order.Status),
		OrderDate:        order.OrderDate.Format(orderDateLayout),
		ReservedBatchIDs: order.BatchIDs(),
		Message:          message,
	}
}

func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	ctx := c.UserContext()

	input := new(placeOrderInput)
	if err := c.BodyParser(input); err != nil {
		mylogger.Warn(ctx, h.logger, "failed to parse order body", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "error parsing body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			mylogger.Warn(
				ctx,
				h.logger,
				"place order validation failed",
				zap.Any("details", utils.FormatValidationError(err)),
			)
		}

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id and quantity must be positive",
		})
	}

	order, err := h.service.PlaceOrder(ctx, input.ProductID, input.Quantity)
	if err != nil {
		status := mapErrorStatus(err)

		mylogger.Warn(
			ctx,
			h.logger,
			"place order failed",
			zap.Int64("product_id", input.ProductID),
			zap.Int64("quantity", input.Quantity),
			zap.Int("http_code", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	mylogger.Info(
		ctx,
		h.logger,
		"order placed",
		zap.Int64("order_id", order.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order, service.ConfirmationMessage))
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	ctx := c.UserContext()

	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "order id is invalid",
		})
	}

	order, err := h.service.GetOrder(ctx, id)
	if err != nil {
		status := mapErrorStatus(err)

		mylogger.Warn(
			ctx,
			h.logger,
			"get order failed",
			zap.Int64("order_id", id),
			zap.Int("http_code", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	return c.JSON(toOrderResponse(order, ""))
}

func RegisterRoutes(app *fiber.App, h *OrderHandler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	order := app.Group("/order")
	order.Post("", h.PlaceOrder)
	order.Get("/:id", h.GetOrder)
}
