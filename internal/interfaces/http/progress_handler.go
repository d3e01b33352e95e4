package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consultoria-api/internal/application/dto"
	"github.com/jhoicas/Consultoria-api/internal/application/progress"
)

// ProgressHandler lecturas de agregados, tablero y reconciliación.
type ProgressHandler struct {
	uc *progress.UseCase
}

// NewProgressHandler construye el handler.
func NewProgressHandler(uc *progress.UseCase) *ProgressHandler {
	return &ProgressHandler{uc: uc}
}

// SubProjectCompletion godoc
// @Summary      Completitud de un subproyecto para una empresa
// @Tags         progress
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID del subproyecto"
// @Param        company_id  query  string  false  "Empresa objetivo (solo consultor/admin)"
// @Success      200  {object}  dto.SubProjectCompletionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/progress/sub-projects/{id} [get]
func (h *ProgressHandler) SubProjectCompletion(c *fiber.Ctx) error {
	companyID := TargetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.GetSubProjectCompletion(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ProjectProgress godoc
// @Summary      Avance ponderado de un proyecto para una empresa
// @Tags         progress
// @Security     Bearer
// @Produce      json
// @Param        id          path   string  true   "ID del proyecto"
// @Param        company_id  query  string  false  "Empresa objetivo (solo consultor/admin)"
// @Success      200  {object}  dto.ProjectProgressResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/progress/projects/{id} [get]
func (h *ProgressHandler) ProjectProgress(c *fiber.Ctx) error {
	companyID := TargetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.GetProjectProgress(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Tablero de avance completo de una empresa
// @Tags         progress
// @Security     Bearer
// @Produce      json
// @Param        company_id  query  string  false  "Empresa objetivo (solo consultor/admin)"
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/progress/dashboard [get]
func (h *ProgressHandler) Dashboard(c *fiber.Ctx) error {
	companyID := TargetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.Dashboard(c.Context(), companyID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Recomputar todos los agregados de una empresa
// @Description  Pasada completa desde el ledger y el alcance vigentes. Segura en cualquier momento.
// @Tags         progress
// @Security     Bearer
// @Produce      json
// @Param        company_id  path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/progress/reconcile/{company_id} [post]
func (h *ProgressHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.Reconcile(c.Context(), c.Params("company_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
