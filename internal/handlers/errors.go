package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/validation"
)

// ErrorHandler turns any error returned by a handler or middleware into the
// {"data": {...}, "status": code} envelope.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperr.As(err); ok {
			status := appErr.Status()
			if status >= fiber.StatusInternalServerError {
				log.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}

			data := fiber.Map{}
			if len(appErr.Fields) > 0 {
				data["errors"] = appErr.Fields
			} else {
				data["message"] = appErr.Message
			}
			if appErr.Code != "" && appErr.Code != apperr.CodeValidationFailed {
				data["error"] = appErr.Code
			}
			return respond(c, status, data)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound:
				return respond(c, fe.Code, fiber.Map{"message": "the requested route was not found"})
			case fiber.StatusRequestEntityTooLarge:
				// the body limit trips before UploadPermission sees an oversized file
				return respond(c, fiber.StatusBadRequest, fiber.Map{
					"message": "the request body is too large",
					"error":   apperr.CodeLimitFileSize,
				})
			}
			return respond(c, fe.Code, fiber.Map{"message": fe.Message})
		}

		log.Error("unhandled error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return respond(c, fiber.StatusInternalServerError, fiber.Map{"message": "internal server error"})
	}
}

// NotFound answers requests no route matched.
func NotFound(c *fiber.Ctx) error {
	return fiber.ErrNotFound
}

func respond(c *fiber.Ctx, status int, data fiber.Map) error {
	return c.Status(status).JSON(fiber.Map{"data": data, "status": status})
}

func message(c *fiber.Ctx, status int, text string) error {
	return respond(c, status, fiber.Map{"message": text})
}

// parseBody decodes the request body into dst, trims its strings and
// validates its tags.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	validation.TrimStrings(dst)
	return validation.Struct(dst)
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("invalid %s", param)
	}
	return id, nil
}
