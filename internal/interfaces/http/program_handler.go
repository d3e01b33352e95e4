package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consultoria-api/internal/application/usecase"
)

// ProgramHandler lectura del árbol de trabajo compartido.
type ProgramHandler struct {
	uc *usecase.ProgramUseCase
}

// NewProgramHandler construye el handler.
func NewProgramHandler(uc *usecase.ProgramUseCase) *ProgramHandler {
	return &ProgramHandler{uc: uc}
}

// List godoc
// @Summary      Listar proyectos del programa con su árbol completo
// @Tags         programs
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProgramListResponse
// @Router       /api/programs [get]
func (h *ProgramHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener un proyecto con subproyectos y tareas anidados
// @Tags         programs
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del proyecto"
// @Success      200  {object}  dto.ProgramResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/programs/{id} [get]
func (h *ProgramHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
