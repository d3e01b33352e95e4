package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consultoria-api/internal/application/completion"
	"github.com/jhoicas/Consultoria-api/internal/application/dto"
)

// CompletionHandler ciclo de vida de tareas: inicio, envío, revisión y consulta.
type CompletionHandler struct {
	uc *completion.UseCase
}

// NewCompletionHandler construye el handler.
func NewCompletionHandler(uc *completion.UseCase) *CompletionHandler {
	return &CompletionHandler{uc: uc}
}

// Start godoc
// @Summary      Iniciar una tarea
// @Description  Crea la fila del ledger en in_progress. Idempotente si ya existe.
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        task_id  path  string  true  "ID de la tarea"
// @Success      200  {object}  dto.TaskStatusResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tasks/{task_id}/start [post]
func (h *CompletionHandler) Start(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	out, err := h.uc.StartTask(c.Context(), companyID, c.Params("task_id"), userID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Enviar una tarea a aprobación
// @Description  Transición a pending_approval desde in_progress o rejected.
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        task_id  path  string  true  "ID de la tarea"
// @Param        body     body  dto.SubmitCompletionRequest  false  "note"
// @Success      200  {object}  dto.TaskStatusResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/tasks/{task_id}/submit [post]
func (h *CompletionHandler) Submit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SubmitCompletionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.uc.SubmitCompletion(c.Context(), companyID, c.Params("task_id"), userID, in.Note)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Review godoc
// @Summary      Aprobar o rechazar una tarea pendiente
// @Description  Solo desde pending_approval. De dos revisiones concurrentes gana una; la otra recibe 409.
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        task_id  path  string  true  "ID de la tarea"
// @Param        body     body  dto.ReviewCompletionRequest  true  "company_id, decision (approve|reject), note"
// @Success      200  {object}  dto.TaskStatusResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/tasks/{task_id}/review [post]
func (h *CompletionHandler) Review(c *fiber.Ctx) error {
	reviewerID := GetUserID(c)
	if reviewerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReviewCompletionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CompanyID == "" || in.Decision == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "company_id y decision son requeridos"})
	}
	out, err := h.uc.ReviewCompletion(c.Context(), in.CompanyID, c.Params("task_id"), reviewerID, in.Decision, in.Note)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Status godoc
// @Summary      Estado e historial de una tarea
// @Description  Rol empresa consulta su propio ledger; consultor/admin pasan company_id por query.
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        task_id     path   string  true   "ID de la tarea"
// @Param        company_id  query  string  false  "Empresa objetivo (solo consultor/admin)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tasks/{task_id}/status [get]
func (h *CompletionHandler) Status(c *fiber.Ctx) error {
	companyID := TargetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	status, history, err := h.uc.GetTaskStatus(c.Context(), companyID, c.Params("task_id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"status": status, "history": history})
}

// PendingReviews godoc
// @Summary      Cola de tareas pendientes de aprobación
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite (default 20)"
// @Param        offset  query  int  false  "Offset (default 0)"
// @Success      200  {object}  dto.PendingReviewListResponse
// @Router       /api/reviews/pending [get]
func (h *CompletionHandler) PendingReviews(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	out, err := h.uc.ListPendingReviews(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
