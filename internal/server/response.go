package server

import (
	"errors"

	"docanalyze/internal/history"
	"docanalyze/internal/ingest"
	"docanalyze/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

func SuccessResponse(message string, data interface{}) fiber.Map {
	return fiber.Map{"message": message, "data": data}
}

func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

// ErrorHandlerMiddleware maps the error taxonomy onto HTTP statuses. Every
// error is recoverable; the session is left in a continuable state by the
// layer that raised it.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := statusForError(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", ctx.Path()).Msg("request failed")
		} else {
			log.Debug().Err(err).Str("path", ctx.Path()).Msg("request rejected")
		}
		return ctx.Status(status).JSON(fiber.Map{"message": err.Error()})
	}
}

func statusForError(err error) int {
	var fiberErr *fiber.Error
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &validationErrs), errors.Is(err, session.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ingest.ErrUnsupportedFileType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, session.ErrNoDocument),
		errors.Is(err, session.ErrNoActiveSession),
		errors.Is(err, session.ErrBusy):
		return fiber.StatusConflict
	case errors.Is(err, history.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, session.ErrExtraction), errors.Is(err, session.ErrQnA):
		return fiber.StatusBadGateway
	case errors.Is(err, history.ErrPersistence):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
