package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/interfaces/channel"
)

// statusFor traduce el código estable a HTTP.
func statusFor(code string) int {
	switch code {
	case domain.CodeValidation, domain.CodeInvalidLocation:
		return fiber.StatusBadRequest
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeUnauthorizedScope:
		return fiber.StatusForbidden
	case domain.CodeDuplicateItem, domain.CodeConflict, domain.CodeInsufficientStock:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeEnvelope responde el sobre del despachador; los errores internos se registran y no se exponen.
func writeEnvelope(c *fiber.Ctx, log zerolog.Logger, env channel.Envelope, okStatus int) error {
	if env.Success {
		return c.Status(okStatus).JSON(env)
	}
	if env.Code == domain.CodeInternal {
		log.Error().Str("path", c.Path()).Str("business_id", GetBusinessID(c)).Msg(env.Message)
		env.Message = "error interno"
	}
	return c.Status(statusFor(env.Code)).JSON(env)
}

// writeError responde un error de dominio con el cuerpo dto.ErrorResponse.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	code := domain.Code(err)
	msg := err.Error()
	if code == domain.CodeInternal {
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		msg = "error interno"
	}
	return c.Status(statusFor(code)).JSON(dto.ErrorResponse{
		Success:   false,
		Code:      code,
		Message:   msg,
		Retryable: domain.Retryable(err),
	})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
