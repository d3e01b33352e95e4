package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jhoicas/Consultoria-api/docs"
	appassignment "github.com/jhoicas/Consultoria-api/internal/application/assignment"
	"github.com/jhoicas/Consultoria-api/internal/application/auth"
	appcompletion "github.com/jhoicas/Consultoria-api/internal/application/completion"
	appevaluation "github.com/jhoicas/Consultoria-api/internal/application/evaluation"
	"github.com/jhoicas/Consultoria-api/internal/application/ports"
	appprogress "github.com/jhoicas/Consultoria-api/internal/application/progress"
	"github.com/jhoicas/Consultoria-api/internal/application/usecase"
	infraexport "github.com/jhoicas/Consultoria-api/internal/infrastructure/export"
	"github.com/jhoicas/Consultoria-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/Consultoria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Consultoria-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Consultoria-api/internal/interfaces/http"
	"github.com/jhoicas/Consultoria-api/pkg/config"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	workItemRepo := postgres.NewWorkItemRepository(pool)
	assignRepo := postgres.NewAssignmentRepository(pool)
	statusRepo := postgres.NewTaskStatusRepository(pool)
	progressRepo := postgres.NewProgressRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Notificador: webhook si está configurado, no-op si no.
	var notifier ports.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify, log)
	} else {
		notifier = notify.NewNoopNotifier()
	}

	storeTimeout := time.Duration(cfg.Store.TimeoutSeconds) * time.Second

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	programUC := usecase.NewProgramUseCase(workItemRepo)
	assignmentUC := appassignment.NewUseCase(txRunner, workItemRepo, assignRepo, companyRepo, log, storeTimeout)
	completionUC := appcompletion.NewUseCase(txRunner, workItemRepo, assignRepo, statusRepo, notifier, log, storeTimeout)
	progressUC := appprogress.NewUseCase(txRunner, workItemRepo, assignRepo, statusRepo, progressRepo, log, storeTimeout)

	// Entregables del reporte: PDF (Maroto) + XML de intercambio (etree)
	pdfGenerator := infrapdf.NewMarotoReportGenerator()
	xmlExporter := infraexport.NewXMLExporter()
	evaluationUC := appevaluation.NewUseCase(
		txRunner, workItemRepo, progressRepo, reportRepo, companyRepo,
		pdfGenerator, xmlExporter, notifier, log, storeTimeout,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Consultoría Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CompanyUC:    companyUC,
		ProgramUC:    programUC,
		AssignmentUC: assignmentUC,
		CompletionUC: completionUC,
		ProgressUC:   progressUC,
		EvaluationUC: evaluationUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
