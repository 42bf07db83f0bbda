package serverutils

import (
	"context"
	"errors"

	"github.com/Gatu-1548/plagio-ia/internal/lifecycle"
	"github.com/Gatu-1548/plagio-ia/internal/reconciler"
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/Gatu-1548/plagio-ia/pkg/gateway"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns handler errors into the JSON envelope.
// Gateway status codes pass through; transport failures become 502.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, message := Classify(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// Classify maps an error to an HTTP status and a user-facing message.
func Classify(err error) (int, string) {
	var (
		fiberErr      *fiber.Error
		validationErr *ValidationError
		statusErr     *gateway.StatusError
		graphqlErr    *gateway.GraphQLError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, lifecycle.ErrInvalidFile),
		errors.Is(err, lifecycle.ErrMissingProject),
		errors.Is(err, workspace.ErrInvalidTab),
		errors.Is(err, reconciler.ErrEmptyScope):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, workspace.ErrSignedOut):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, workspace.ErrNoOrganization):
		return fiber.StatusConflict, err.Error()
	case errors.As(err, &statusErr):
		return statusErr.StatusCode, statusErr.Message()
	case errors.Is(err, gateway.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.As(err, &graphqlErr):
		return fiber.StatusUnprocessableEntity, gateway.Message(err)
	case errors.Is(err, reconciler.ErrSuperseded):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "gateway did not answer in time"
	case errors.Is(err, gateway.ErrNetwork), errors.Is(err, gateway.ErrMalformedResponse):
		return fiber.StatusBadGateway, gateway.Message(err)
	default:
		return fiber.StatusInternalServerError, err.Error()
	}
}
