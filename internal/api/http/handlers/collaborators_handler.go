package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-service/internal/api/dto"
	"github.com/spec-kit/embed-service/internal/auth"
	"github.com/spec-kit/embed-service/internal/domain"
	"github.com/spec-kit/embed-service/internal/service"
	apperrors "github.com/spec-kit/embed-service/pkg/util"
)

// CollaboratorsHandler manages invitation endpoints.
type CollaboratorsHandler struct {
	service *service.CollaboratorService
}

// NewCollaboratorsHandler constructs handler.
func NewCollaboratorsHandler(collaboratorService *service.CollaboratorService) *CollaboratorsHandler {
	return &CollaboratorsHandler{service: collaboratorService}
}

// Invite POST /projects/:id/collaborators.
func (h *CollaboratorsHandler) Invite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.InviteCollaboratorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	collaborator, err := h.service.Invite(c.Context(), principal.User.ID, c.Params("id"), req.Email, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": collaboratorResponse(collaborator)})
}

// List GET /projects/:id/collaborators.
func (h *CollaboratorsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	collaborators, err := h.service.List(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CollaboratorResponse, 0, len(collaborators))
	for i := range collaborators {
		items = append(items, collaboratorResponse(&collaborators[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Remove DELETE /projects/:id/collaborators/:userId.
func (h *CollaboratorsHandler) Remove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.service.Remove(c.Context(), principal.User.ID, c.Params("id"), c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Respond POST /invitations/:id/respond.
func (h *CollaboratorsHandler) Respond(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RespondInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	collaborator, err := h.service.Respond(c.Context(), principal.User.ID, c.Params("id"), req.Accept)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": collaboratorResponse(collaborator)})
}

func collaboratorResponse(collaborator *domain.Collaborator) dto.CollaboratorResponse {
	return dto.CollaboratorResponse{
		ID:        collaborator.ID,
		ProjectID: collaborator.ProjectID,
		UserID:    collaborator.UserID,
		Role:      collaborator.Role,
		Status:    collaborator.Status,
		CreatedAt: collaborator.CreatedAt,
	}
}
