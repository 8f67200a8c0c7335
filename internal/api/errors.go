package api

import (
	"errors"

	"github.com/benchboard/benchboard/internal/contract"
	"github.com/benchboard/benchboard/schema"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler maps the error taxonomy to HTTP status codes and a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, schema.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, schema.ErrConfig), errors.Is(err, schema.ErrLookup):
		code = fiber.StatusUnprocessableEntity
	}

	if code >= fiber.StatusInternalServerError {
		contract.LogWarn("Request "+c.Method()+" "+c.Path()+" failed", err)
	}

	body := fiber.Map{"error": err.Error()}
	var nf *schema.NotFoundError
	if errors.As(err, &nf) && nf.Suggestion != "" {
		body["suggestion"] = nf.Suggestion
	}
	return c.Status(code).JSON(body)
}
