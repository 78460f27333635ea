package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"ai-studymate-be/pkg/assistant"
	"ai-studymate-be/pkg/resilience"
)

// RetryableResponse is the error envelope for outages the client may retry.
type RetryableResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// ErrorHandlerMiddleware maps service errors onto HTTP statuses. Validation
// failures are the client's fault; provider outages that exhausted every
// fallback surface as 503 with a retryable flag.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var valErr *ValidationError
		if errors.As(err, &valErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, valErr.Message))
		}

		if errors.Is(err, resilience.ErrGenerationUnavailable) || errors.Is(err, resilience.ErrGenerationTimeout) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(RetryableResponse{
				Code:      503,
				Message:   assistant.ApologyMessage,
				Retryable: true,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Printf("[ERROR] Unhandled error: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
	}
}
