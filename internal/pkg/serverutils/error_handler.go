package serverutils

import (
	"errors"

	"ai-parenting-be/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates domain errors into the response envelope.
// ExternalServiceUnavailable never reaches this layer: the chat engine degrades
// to fallback text/vectors and the turn still completes.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).
				JSON(ErrorResponse(fiber.StatusUnprocessableEntity, vErr.Error()))
		}

		switch {
		case errors.Is(err, apperrors.ErrScopeNotFound):
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(fiber.StatusNotFound, err.Error()))
		case errors.Is(err, apperrors.ErrInvalidForcedAgent):
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(fiber.StatusBadRequest, err.Error()))
		case errors.Is(err, apperrors.ErrInvalidMetadata):
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(fiber.StatusBadRequest, err.Error()))
		case errors.Is(err, apperrors.ErrTurnInProgress):
			return ctx.Status(fiber.StatusConflict).
				JSON(ErrorResponse(fiber.StatusConflict, err.Error()))
		case errors.Is(err, apperrors.ErrConversationEnded):
			return ctx.Status(fiber.StatusConflict).
				JSON(ErrorResponse(fiber.StatusConflict, err.Error()))
		case apperrors.IsAggregateWriteError(err):
			// The answer was generated but bookkeeping was lost. The client
			// should retry the turn.
			return ctx.Status(fiber.StatusConflict).
				JSON(ErrorResponse(fiber.StatusConflict, "turn could not be committed, please retry"))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}
