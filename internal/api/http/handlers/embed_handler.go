package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-service/internal/api/dto"
	"github.com/spec-kit/embed-service/internal/auth"
	"github.com/spec-kit/embed-service/internal/domain"
	"github.com/spec-kit/embed-service/internal/observability"
	"github.com/spec-kit/embed-service/internal/service"
	apperrors "github.com/spec-kit/embed-service/pkg/util"
)

// EmbedHandler exposes embed token issuance and the anonymous
// validation endpoint consumed by embedding pages.
type EmbedHandler struct {
	service *service.EmbedService
	metrics *observability.Metrics
}

// NewEmbedHandler constructs handler.
func NewEmbedHandler(embedService *service.EmbedService, metrics *observability.Metrics) *EmbedHandler {
	return &EmbedHandler{service: embedService, metrics: metrics}
}

// IssueToken POST /projects/:id/embed.
func (h *EmbedHandler) IssueToken(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.IssueEmbedTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	mode, ok := domain.ParseEmbedAccessControl(req.AccessControl)
	if !ok {
		return apperrors.NewValidationError("unrecognized access control mode", map[string]any{"accessControl": req.AccessControl})
	}
	expirationDays := 0
	if req.ExpirationDays != nil {
		if *req.ExpirationDays < 0 {
			return apperrors.NewValidationError("expirationDays must be non-negative", nil)
		}
		expirationDays = *req.ExpirationDays
	}

	cfg, err := h.service.IssueOrRotateToken(c.Context(), c.Params("id"), principal.User.ID, service.EmbedIssueInput{
		AccessControl:  mode,
		AllowedDomains: req.AllowedDomains,
		ExpirationDays: expirationDays,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EmbedTokenResponse{
		Token:          cfg.Token,
		AccessControl:  string(cfg.AccessControl),
		AllowedDomains: domainsOrEmpty(cfg.AllowedDomains),
		ExpiresAt:      cfg.ExpiresAt,
	}})
}

// ValidateAccess GET /projects/:id/embed. Anonymous; embedding viewers
// call this before rendering the iframe.
func (h *EmbedHandler) ValidateAccess(c *fiber.Ctx) error {
	result, err := h.service.ValidateEmbedAccess(c.Context(), c.Params("id"), c.Query("token"), c.Query("origin"))
	if err != nil {
		if de := apperrors.ToDomainError(err); de != nil && de.Code == "FORBIDDEN" {
			h.metrics.RecordEmbedDenial(de.Message)
		}
		return err
	}

	return c.JSON(fiber.Map{"data": dto.ValidateEmbedResponse{
		Project: dto.EmbedProjectResponse{
			ID:          result.Project.ID,
			Name:        result.Project.Name,
			Description: result.Project.Description,
		},
		EmbedConfig: dto.EmbedConfigResponse{
			AccessControl:  string(result.AccessControl),
			AllowedDomains: domainsOrEmpty(result.AllowedDomains),
			ExpiresAt:      result.ExpiresAt,
		},
	}})
}

func domainsOrEmpty(domains []string) []string {
	if domains == nil {
		return []string{}
	}
	return domains
}
