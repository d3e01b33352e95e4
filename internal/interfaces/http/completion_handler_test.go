package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultoria-api/internal/application/apptest"
	"github.com/jhoicas/Consultoria-api/internal/application/completion"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Consultoria-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Consultoria-api/pkg/jwt"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: app Fiber con las rutas de tareas cableadas al caso de uso real
// sobre los repos en memoria. Árbol p1 → sp1 → {t1, t2}, sp2 → {t3};
// la empresa A tiene asignado sp1.
// ──────────────────────────────────────────────────────────────────────────────

const (
	hCompanyA = "empresa-a"
	hTask1    = "t1"
	hTask2    = "t2"
	hTask3    = "t3"
)

func buildCompletionApp(t *testing.T) *fiber.App {
	t.Helper()

	st := apptest.NewStore()
	st.AddCompany(hCompanyA, "Empresa A")
	st.AddProject("p1", "Transformación Digital")
	st.AddSubProject("sp1", "p1", "Diagnóstico")
	st.AddTask(hTask1, "sp1", "Levantar procesos")
	st.AddTask(hTask2, "sp1", "Mapear sistemas")
	st.AddSubProject("sp2", "p1", "Implementación")
	st.AddTask(hTask3, "sp2", "Plan de trabajo")
	st.Assign(hCompanyA, "sp1")

	uc := completion.NewUseCase(
		apptest.NewTxRunner(st), st.WorkItems(), st.Assignments(), st.TaskStatuses(),
		&apptest.NotifierRecorder{}, logger.Nop(), time.Second,
	)

	// Mismo cableado de middlewares que el router de producción.
	app := fiber.New()
	h := apphttp.NewCompletionHandler(uc)
	tasks := app.Group("/api/tasks", apphttp.AuthMiddleware(testJWTSecret))
	operador := apphttp.RequireRole(entity.RoleAdmin, entity.RoleConsultor)
	empresa := apphttp.RequireRole(entity.RoleEmpresa)
	tasks.Post("/:task_id/start", empresa, h.Start)
	tasks.Post("/:task_id/submit", empresa, h.Submit)
	tasks.Post("/:task_id/review", operador, h.Review)
	tasks.Get("/:task_id/status", h.Status)
	return app
}

// tokenFor genera un Bearer token para el rol y la empresa indicados.
func tokenFor(t *testing.T, role, companyID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, companyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func postJSON(t *testing.T, app *fiber.App, path, authHeader, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Authorization", authHeader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeErr extrae el código de un dto.ErrorResponse.
func decodeErr(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Code
}

func reviewBody(decision string) string {
	return `{"company_id":"` + hCompanyA + `","decision":"` + decision + `","note":"revisado"}`
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo feliz: start → submit → review → status
// ──────────────────────────────────────────────────────────────────────────────

func TestCompletionHandlers_FlujoCompleto(t *testing.T) {
	app := buildCompletionApp(t)
	empresa := tokenFor(t, entity.RoleEmpresa, hCompanyA)
	consultor := tokenFor(t, entity.RoleConsultor, "consultora-x")

	resp := postJSON(t, app, "/api/tasks/"+hTask1+"/start", empresa, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/tasks/"+hTask1+"/submit", empresa, `{"note":"listo"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var submitted struct {
		State string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	resp.Body.Close()
	assert.Equal(t, entity.StatusPendingApproval, submitted.State)

	resp = postJSON(t, app, "/api/tasks/"+hTask1+"/review", consultor, reviewBody(entity.DecisionApprove))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var reviewed struct {
		State string `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reviewed))
	resp.Body.Close()
	assert.Equal(t, entity.StatusApproved, reviewed.State)

	// El consultor consulta el ledger de la empresa vía query param.
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+hTask1+"/status?company_id="+hCompanyA, nil)
	req.Header.Set("Authorization", consultor)
	statusResp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer statusResp.Body.Close()
	require.Equal(t, http.StatusOK, statusResp.StatusCode)

	var out struct {
		History []json.RawMessage `json:"history"`
	}
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&out))
	assert.Len(t, out.History, 3, "not_started→in_progress→pending_approval→approved")
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores de dominio a códigos HTTP
// ──────────────────────────────────────────────────────────────────────────────

// Revisar una tarea que está in_progress (nunca enviada) → 422.
func TestCompletionHandlers_ReviewSinPendiente_422(t *testing.T) {
	app := buildCompletionApp(t)
	empresa := tokenFor(t, entity.RoleEmpresa, hCompanyA)
	consultor := tokenFor(t, entity.RoleConsultor, "consultora-x")

	resp := postJSON(t, app, "/api/tasks/"+hTask2+"/start", empresa, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/tasks/"+hTask2+"/review", consultor, reviewBody(entity.DecisionApprove))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decodeErr(t, resp))
}

// Una segunda revisión sobre una tarea ya decidida → 409 (carrera perdida).
func TestCompletionHandlers_ReviewRepetida_409(t *testing.T) {
	app := buildCompletionApp(t)
	empresa := tokenFor(t, entity.RoleEmpresa, hCompanyA)
	consultor := tokenFor(t, entity.RoleConsultor, "consultora-x")

	resp := postJSON(t, app, "/api/tasks/"+hTask1+"/submit", empresa, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, app, "/api/tasks/"+hTask1+"/review", consultor, reviewBody(entity.DecisionApprove))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/tasks/"+hTask1+"/review", consultor, reviewBody(entity.DecisionReject))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decodeErr(t, resp))
}

// Reenviar una tarea ya aprobada → 422 (approved es terminal).
func TestCompletionHandlers_SubmitDeAprobada_422(t *testing.T) {
	app := buildCompletionApp(t)
	empresa := tokenFor(t, entity.RoleEmpresa, hCompanyA)
	consultor := tokenFor(t, entity.RoleConsultor, "consultora-x")

	resp := postJSON(t, app, "/api/tasks/"+hTask1+"/submit", empresa, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, app, "/api/tasks/"+hTask1+"/review", consultor, reviewBody(entity.DecisionApprove))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/tasks/"+hTask1+"/submit", empresa, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decodeErr(t, resp))
}

func TestCompletionHandlers_TareaInexistente_404(t *testing.T) {
	app := buildCompletionApp(t)

	resp := postJSON(t, app, "/api/tasks/no-existe/start", tokenFor(t, entity.RoleEmpresa, hCompanyA), "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeErr(t, resp))
}

// t3 existe pero su subproyecto no está asignado a la empresa A.
func TestCompletionHandlers_TareaFueraDeAlcance_403(t *testing.T) {
	app := buildCompletionApp(t)

	resp := postJSON(t, app, "/api/tasks/"+hTask3+"/start", tokenFor(t, entity.RoleEmpresa, hCompanyA), "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeErr(t, resp))
}

// La matriz de roles aplica antes que el caso de uso.
func TestCompletionHandlers_RolIncorrecto_403(t *testing.T) {
	app := buildCompletionApp(t)
	empresa := tokenFor(t, entity.RoleEmpresa, hCompanyA)
	consultor := tokenFor(t, entity.RoleConsultor, "consultora-x")

	resp := postJSON(t, app, "/api/tasks/"+hTask1+"/review", empresa, reviewBody(entity.DecisionApprove))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/tasks/"+hTask1+"/submit", consultor, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Revisión sin decision en el cuerpo → 400 de validación.
func TestCompletionHandlers_ReviewSinDecision_400(t *testing.T) {
	app := buildCompletionApp(t)

	resp := postJSON(t, app, "/api/tasks/"+hTask1+"/review",
		tokenFor(t, entity.RoleConsultor, "consultora-x"),
		`{"company_id":"`+hCompanyA+`"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeErr(t, resp))
}
