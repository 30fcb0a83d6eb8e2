package http

import (
	"errors"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/repository"
	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/internal/inventory/service"
	"github.com/gofiber/fiber/v2"
)

func mapErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repository.ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, repository.ErrReservationConflict):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
