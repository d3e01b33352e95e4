package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consultoria-api/internal/application/dto"
	"github.com/jhoicas/Consultoria-api/internal/application/evaluation"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// ReportHandler flujo de evaluación: elegibilidad, reportes y entregables.
type ReportHandler struct {
	uc *evaluation.UseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *evaluation.UseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// requesterCompanyID vacío significa operador del programa: puede ver
// reportes de cualquier empresa.
func requesterCompanyID(c *fiber.Ctx) string {
	if GetRole(c) == entity.RoleEmpresa {
		return GetCompanyID(c)
	}
	return ""
}

// Eligibility godoc
// @Summary      Elegibilidad de evaluación de un subproyecto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        company_id      query  string  true  "Empresa objetivo"
// @Param        sub_project_id  query  string  true  "Subproyecto"
// @Success      200  {object}  dto.EligibilityResponse
// @Router       /api/reports/eligibility [get]
func (h *ReportHandler) Eligibility(c *fiber.Ctx) error {
	companyID := c.Query("company_id")
	subProjectID := c.Query("sub_project_id")
	if companyID == "" || subProjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "company_id y sub_project_id son requeridos"})
	}
	out, err := h.uc.IsEligible(c.Context(), companyID, subProjectID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear borrador de reporte de evaluación
// @Description  Exige subproyecto 100% completo y sin reporte previo para el par.
// @Tags         reports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReportRequest  true  "company_id, sub_project_id, score, strengths, weaknesses, recommendations"
// @Success      201   {object}  dto.ReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/reports [post]
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateReportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CompanyID == "" || in.SubProjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "company_id y sub_project_id son requeridos"})
	}
	out, err := h.uc.CreateReport(c.Context(), userID, in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Publish godoc
// @Summary      Publicar un reporte (draft → published)
// @Description  Cierra el subproyecto para la empresa: no se aceptan más envíos de sus tareas.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del reporte"
// @Success      200  {object}  dto.ReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/reports/{id}/publish [post]
func (h *ReportHandler) Publish(c *fiber.Ctx) error {
	out, err := h.uc.PublishReport(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener un reporte
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del reporte"
// @Success      200  {object}  dto.ReportResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/{id} [get]
func (h *ReportHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetReport(c.Context(), requesterCompanyID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar reportes de una empresa
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        company_id  query  string  false  "Empresa objetivo (solo consultor/admin)"
// @Success      200  {array}  dto.ReportResponse
// @Router       /api/reports [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	companyID := TargetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "company_id es requerido"})
	}
	out, err := h.uc.ListReports(c.Context(), companyID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar el PDF de un reporte publicado
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID del reporte"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/{id}/pdf [get]
func (h *ReportHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.DownloadReportPDF(c.Context(), requesterCompanyID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// ExportXML godoc
// @Summary      Exportar un reporte publicado como XML de intercambio
// @Tags         reports
// @Security     Bearer
// @Produce      application/xml
// @Param        id  path  string  true  "ID del reporte"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/{id}/xml [get]
func (h *ReportHandler) ExportXML(c *fiber.Ctx) error {
	xmlBytes, filename, err := h.uc.ExportReportXML(c.Context(), requesterCompanyID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(xmlBytes)
}
