package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consultoria-api/internal/application/assignment"
	"github.com/jhoicas/Consultoria-api/internal/application/dto"
)

// AssignmentHandler administra asignaciones empresa ↔ árbol (solo admin).
type AssignmentHandler struct {
	uc *assignment.UseCase
}

// NewAssignmentHandler construye el handler.
func NewAssignmentHandler(uc *assignment.UseCase) *AssignmentHandler {
	return &AssignmentHandler{uc: uc}
}

// Assign godoc
// @Summary      Asignar un nodo del árbol a una empresa
// @Description  Crea o reactiva la asignación. Idempotente si ya está activa.
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignRequest  true  "company_id, work_item_id"
// @Success      201   {object}  dto.AssignmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/assignments [post]
func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CompanyID == "" || in.WorkItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "company_id y work_item_id son requeridos"})
	}
	out, err := h.uc.Assign(c.Context(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Revoke godoc
// @Summary      Revocar una asignación (soft-delete)
// @Description  El historial de aprobaciones se conserva; las tareas salen del alcance.
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RevokeRequest  true  "company_id, work_item_id"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/assignments/revoke [post]
func (h *AssignmentHandler) Revoke(c *fiber.Ctx) error {
	var in dto.RevokeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CompanyID == "" || in.WorkItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "company_id y work_item_id son requeridos"})
	}
	if err := h.uc.Revoke(c.Context(), in); err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"message": "asignación revocada"})
}

// Scope godoc
// @Summary      Alcance efectivo de una empresa
// @Description  Unión deduplicada de las tareas accionables por la empresa.
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        company_id  path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.ScopeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/assignments/scope/{company_id} [get]
func (h *AssignmentHandler) Scope(c *fiber.Ctx) error {
	out, err := h.uc.ResolveScope(c.Context(), c.Params("company_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
