package http

import (
	"errors"
	"net/http"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every error returned by this package.
type ErrorResponse struct {
	// HTTP status code
	Code int `json:"code"`
	// Error type identifier
	Title string `json:"title"`
	// Human-readable error message
	Message string `json:"message"`
}

// Error allows ErrorResponse to satisfy the error interface.
func (e ErrorResponse) Error() string {
	return e.Message
}

// Respond writes body as JSON with status. Out-of-range statuses become 500.
func Respond(c *fiber.Ctx, status int, body any) error {
	if status < http.StatusContinue || status > 599 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(body)
}

// RespondError writes an ErrorResponse for status.
func RespondError(c *fiber.Ctx, status int, title, message string) error {
	return Respond(c, status, ErrorResponse{
		Code:    status,
		Title:   title,
		Message: message,
	})
}

// RenderError writes all transport errors through a single, stable contract.
func RenderError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var responseErr ErrorResponse
	if errors.As(err, &responseErr) {
		status := fiber.StatusInternalServerError
		if responseErr.Code >= http.StatusContinue && responseErr.Code <= 599 {
			status = responseErr.Code
		}

		title := responseErr.Title
		if title == "" {
			title = constant.DefaultErrorTitle
		}

		message := responseErr.Message
		if message == "" {
			message = http.StatusText(status)
		}

		return RespondError(c, status, title, message)
	}

	var businessErr facemesh.Response
	if errors.As(err, &businessErr) {
		return Respond(c, fiber.StatusInternalServerError, businessErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return RespondError(c, fiberErr.Code, constant.DefaultErrorTitle, fiberErr.Message)
	}

	return RespondError(c, fiber.StatusInternalServerError, constant.DefaultErrorTitle, constant.DefaultInternalErrorMessage)
}
