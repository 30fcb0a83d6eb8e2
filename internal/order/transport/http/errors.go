package http

import (
	"errors"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/client"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/order/service"
	"github.com/gofiber/fiber/v2"
)

func mapErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, client.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repository.ErrOrderNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, client.ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, client.ErrInventoryUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
