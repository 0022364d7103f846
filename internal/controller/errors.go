package controller

import (
	"errors"

	"legalai-be/internal/pkg/serverutils"
	"legalai-be/internal/service"
	"legalai-be/pkg/chat"
	"legalai-be/pkg/draft"
	"legalai-be/pkg/filestore"
	"legalai-be/pkg/guard"
	"legalai-be/pkg/role"
	"legalai-be/pkg/summary"

	"github.com/gofiber/fiber/v2"
)

type errorMapping struct {
	target  error
	code    int
	message string
}

var errorMappings = []errorMapping{
	{draft.ErrInFlight, fiber.StatusConflict, "A document is already being generated."},
	{draft.ErrGenerationFailed, fiber.StatusBadGateway, draft.FailureMessage},
	{draft.ErrSuperseded, fiber.StatusConflict, "The draft was cleared before the document arrived."},
	{draft.ErrNoDocument, fiber.StatusNotFound, "Generate a document first."},
	{chat.ErrEmptyMessage, fiber.StatusBadRequest, "Please enter a message."},
	{chat.ErrAwaitingResponse, fiber.StatusConflict, "Please wait for the current reply."},
	{chat.ErrSuperseded, fiber.StatusConflict, "The chat was cleared before the reply arrived."},
	{service.ErrJobNotFound, fiber.StatusNotFound, "Summary not found."},
	{summary.ErrRemoved, fiber.StatusNotFound, "Summary not found."},
	{summary.ErrNotRetryable, fiber.StatusConflict, "Only a failed summary can be retried."},
	{summary.ErrBusy, fiber.StatusConflict, "The document is still being processed."},
	{filestore.ErrReleased, fiber.StatusGone, "The file is no longer available."},
	{role.ErrInvalidRole, fiber.StatusBadRequest, "Role must be one of User, Lawyer or Judge."},
	{service.ErrRoleUnavailable, fiber.StatusServiceUnavailable, "Could not save your role. Please try again."},
	{guard.ErrUndeclaredRoute, fiber.StatusNotFound, "Unknown page."},
}

// httpError turns a domain error into the envelope the client expects.
// Draft validation errors keep their own message; unknown errors pass through.
func httpError(err error) error {
	if errors.Is(err, draft.ErrInvalidRequest) {
		return serverutils.NewHTTPError(fiber.StatusBadRequest, err.Error(), err)
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return serverutils.NewHTTPError(m.code, m.message, err)
		}
	}
	return err
}
