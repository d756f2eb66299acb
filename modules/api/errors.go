package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	domain "github.com/mmoralesp95/Proyecto-IA/domain/backlog"
)

const internalMessage = "Internal server error"

// statusFor maps an error kind to its default HTTP status.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as an ErrorResponse. Storage and unexpected errors
// are logged and answered with a generic message.
func writeError(c *fiber.Ctx, err error) error {
	return writeErrorStatus(c, err, statusFor(domain.KindOf(err)))
}

func writeErrorStatus(c *fiber.Ctx, err error, status int) error {
	kind := domain.KindOf(err)
	resp := ErrorResponse{
		Error:    string(kind),
		Message:  err.Error(),
		Problems: domain.ProblemsOf(err),
	}

	switch kind {
	case domain.KindCorrupt, domain.KindInternal:
		log.Printf("[api] %s %s failed: %v", c.Method(), c.Path(), err)
		resp.Message = internalMessage
		resp.Problems = nil
	case domain.KindUnavailable:
		resp.Message = "AI service not configured"
	case domain.KindDraft:
		log.Printf("[api] %s %s draft rejected: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(resp)
}

// customErrorHandler handles errors returned from handlers and middleware.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := internalMessage

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.Printf("[api] unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
