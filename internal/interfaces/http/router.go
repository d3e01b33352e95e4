package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Consultoria-api/internal/application/assignment"
	"github.com/jhoicas/Consultoria-api/internal/application/auth"
	"github.com/jhoicas/Consultoria-api/internal/application/completion"
	"github.com/jhoicas/Consultoria-api/internal/application/evaluation"
	"github.com/jhoicas/Consultoria-api/internal/application/progress"
	"github.com/jhoicas/Consultoria-api/internal/application/usecase"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CompanyUC    *usecase.CompanyUseCase
	ProgramUC    *usecase.ProgramUseCase
	AssignmentUC *assignment.UseCase
	CompletionUC *completion.UseCase
	ProgressUC   *progress.UseCase
	EvaluationUC *evaluation.UseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
//
// Matriz de roles:
//
//	admin              → asignaciones, reconciliación, empresas
//	consultor | admin  → revisión, cola pendiente, reportes
//	empresa            → iniciar/enviar tareas, su propio tablero
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	operador := RequireRole(entity.RoleAdmin, entity.RoleConsultor)
	admin := RequireRole(entity.RoleAdmin)
	empresa := RequireRole(entity.RoleEmpresa)

	// Companies (protegido; escritura solo admin)
	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Post("/", admin, companyHandler.Create)

	// Programs: árbol de trabajo compartido (lectura para todos los roles)
	programs := protected.Group("/programs")
	programHandler := NewProgramHandler(deps.ProgramUC)
	programs.Get("/", programHandler.List)
	programs.Get("/:id", programHandler.GetByID)

	// Assignments (solo admin; scope legible por operador)
	assignments := protected.Group("/assignments")
	assignmentHandler := NewAssignmentHandler(deps.AssignmentUC)
	assignments.Post("/", admin, assignmentHandler.Assign)
	assignments.Post("/revoke", admin, assignmentHandler.Revoke)
	assignments.Get("/scope/:company_id", operador, assignmentHandler.Scope)

	// Tasks: ciclo de completitud
	tasks := protected.Group("/tasks")
	completionHandler := NewCompletionHandler(deps.CompletionUC)
	tasks.Post("/:task_id/start", empresa, completionHandler.Start)
	tasks.Post("/:task_id/submit", empresa, completionHandler.Submit)
	tasks.Post("/:task_id/review", operador, completionHandler.Review)
	tasks.Get("/:task_id/status", completionHandler.Status)
	protected.Get("/reviews/pending", operador, completionHandler.PendingReviews)

	// Progress: agregados y tablero
	progressGroup := protected.Group("/progress")
	progressHandler := NewProgressHandler(deps.ProgressUC)
	progressGroup.Get("/sub-projects/:id", progressHandler.SubProjectCompletion)
	progressGroup.Get("/projects/:id", progressHandler.ProjectProgress)
	progressGroup.Get("/dashboard", progressHandler.Dashboard)
	progressGroup.Post("/reconcile/:company_id", admin, progressHandler.Reconcile)

	// Reports: flujo de evaluación
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.EvaluationUC)
	reports.Get("/eligibility", operador, reportHandler.Eligibility)
	reports.Post("/", operador, reportHandler.Create)
	reports.Get("/", reportHandler.List)
	reports.Get("/:id", reportHandler.GetByID)
	reports.Post("/:id/publish", operador, reportHandler.Publish)
	reports.Get("/:id/pdf", reportHandler.DownloadPDF)
	reports.Get("/:id/xml", reportHandler.ExportXML)
}
