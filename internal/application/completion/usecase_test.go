package completion_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultoria-api/internal/application/apptest"
	"github.com/jhoicas/Consultoria-api/internal/application/completion"
	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

const (
	companyA   = "empresa-a"
	companyB   = "empresa-b"
	actorUser  = "usuario-1"
	reviewerID = "consultor-1"
	projectID  = "p1"
	subID      = "sp1"
	task1      = "t1"
	task2      = "t2"
	otherSubID = "sp2"
	otherTask  = "t3"
)

// newFixture árbol mínimo: p1 → {sp1 → {t1, t2}, sp2 → {t3}}.
// La empresa A tiene asignado sp1; sp2 queda fuera de su alcance.
func newFixture(t *testing.T) (*completion.UseCase, *apptest.Store, *apptest.NotifierRecorder) {
	t.Helper()
	st := apptest.NewStore()
	st.AddCompany(companyA, "Empresa A")
	st.AddCompany(companyB, "Empresa B")
	st.AddProject(projectID, "Transformación Digital")
	st.AddSubProject(subID, projectID, "Diagnóstico")
	st.AddTask(task1, subID, "Levantar procesos")
	st.AddTask(task2, subID, "Mapear sistemas")
	st.AddSubProject(otherSubID, projectID, "Implementación")
	st.AddTask(otherTask, otherSubID, "Plan de trabajo")
	st.Assign(companyA, subID)

	notifier := &apptest.NotifierRecorder{}
	uc := completion.NewUseCase(
		apptest.NewTxRunner(st), st.WorkItems(), st.Assignments(), st.TaskStatuses(),
		notifier, logger.Nop(), time.Second,
	)
	return uc, st, notifier
}

// ──────────────────────────────────────────────────────────────────────────────
// StartTask
// ──────────────────────────────────────────────────────────────────────────────

func TestStartTask_CreaFilaEnInProgress(t *testing.T) {
	uc, _, _ := newFixture(t)

	resp, err := uc.StartTask(context.Background(), companyA, task1, actorUser)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, resp.State)
	assert.Equal(t, companyA, resp.CompanyID)
	assert.Equal(t, task1, resp.TaskID)

	// La creación perezosa deja la transición inicial en el historial.
	_, history, err := uc.GetTaskStatus(context.Background(), companyA, task1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.StatusNotStarted, history[0].FromState)
	assert.Equal(t, entity.StatusInProgress, history[0].ToState)
}

func TestStartTask_Idempotente(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.StartTask(context.Background(), companyA, task1, actorUser)
	require.NoError(t, err)
	resp, err := uc.StartTask(context.Background(), companyA, task1, actorUser)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, resp.State)

	// Repetir el start no agrega transiciones.
	_, history, err := uc.GetTaskStatus(context.Background(), companyA, task1)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStartTask_TareaFueraDeAlcance_Forbidden(t *testing.T) {
	uc, _, _ := newFixture(t)

	// t3 existe pero pertenece a sp2, no asignado a la empresa A.
	_, err := uc.StartTask(context.Background(), companyA, otherTask, actorUser)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStartTask_TareaInexistente_NotFound(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.StartTask(context.Background(), companyA, "no-existe", actorUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStartTask_SobreSubproyecto_NotFound(t *testing.T) {
	uc, _, _ := newFixture(t)

	// Solo las hojas (tareas) admiten el ciclo de completitud.
	_, err := uc.StartTask(context.Background(), companyA, subID, actorUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// SubmitCompletion
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_DesdeInProgress_PasaAPendiente(t *testing.T) {
	uc, st, _ := newFixture(t)

	_, err := uc.StartTask(context.Background(), companyA, task1, actorUser)
	require.NoError(t, err)
	resp, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "evidencia adjunta")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPendingApproval, resp.State)
	require.NotNil(t, resp.SubmittedAt)
	assert.Equal(t, "evidencia adjunta", resp.SubmissionNote)

	// La transición recomputa los agregados del subproyecto y del proyecto.
	comp := st.SubCompletion(companyA, subID)
	require.NotNil(t, comp)
	assert.Equal(t, 2, comp.TotalTasks)
	assert.Equal(t, 0, comp.CompletedTasks)
	prog := st.ProjProgress(companyA, projectID)
	require.NotNil(t, prog)
	assert.Equal(t, 2, prog.TotalTasks)
}

func TestSubmit_SinStartPrevio_CreaPerezosamente(t *testing.T) {
	uc, _, _ := newFixture(t)

	resp, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingApproval, resp.State)

	// Historial: not_started→in_progress (perezoso) + in_progress→pending_approval.
	_, history, err := uc.GetTaskStatus(context.Background(), companyA, task1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.StatusInProgress, history[1].FromState)
	assert.Equal(t, entity.StatusPendingApproval, history[1].ToState)
}

func TestSubmit_YaPendiente_EsIdempotente(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "primera")
	require.NoError(t, err)
	resp, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "segunda")
	require.NoError(t, err, "reenviar una tarea ya pendiente es no-op idempotente")
	assert.Equal(t, entity.StatusPendingApproval, resp.State)
	assert.Equal(t, "primera", resp.SubmissionNote, "el reenvío no sobreescribe la nota vigente")

	_, history, err := uc.GetTaskStatus(context.Background(), companyA, task1)
	require.NoError(t, err)
	assert.Len(t, history, 2, "el no-op no registra transición")
}

func TestSubmit_DesdeApproved_InvalidTransition(t *testing.T) {
	uc, st, _ := newFixture(t)

	st.SeedTaskState(companyA, task1, entity.StatusApproved)
	_, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "approved es terminal")
}

func TestSubmit_DesdeRejected_ReentraAlCiclo(t *testing.T) {
	uc, _, _ := newFixture(t)

	seedReviewedTask(t, uc, entity.DecisionReject)

	resp, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "correcciones aplicadas")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPendingApproval, resp.State)
	assert.Nil(t, resp.ReviewerID, "el reenvío limpia los campos de la revisión anterior")
	assert.Empty(t, resp.ReviewNote)
}

func TestSubmit_SubproyectoEvaluado_ErrClosed(t *testing.T) {
	uc, st, _ := newFixture(t)

	// Completar y cerrar el subproyecto para la empresa.
	approveTask(t, uc, task1)
	approveTask(t, uc, task2)
	rows, err := st.Progress().MarkEvaluated(context.Background(), companyA, subID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	_, err = uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	assert.ErrorIs(t, err, domain.ErrClosed)
	_, err = uc.StartTask(context.Background(), companyA, task1, actorUser)
	assert.ErrorIs(t, err, domain.ErrClosed)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReviewCompletion
// ──────────────────────────────────────────────────────────────────────────────

func TestReview_Aprueba(t *testing.T) {
	uc, st, notifier := newFixture(t)

	_, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	require.NoError(t, err)
	resp, err := uc.ReviewCompletion(context.Background(), companyA, task1, reviewerID, entity.DecisionApprove, "bien documentado")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, resp.State)
	require.NotNil(t, resp.ReviewerID)
	assert.Equal(t, reviewerID, *resp.ReviewerID)
	assert.Equal(t, "bien documentado", resp.ReviewNote)

	// 1 de 2 tareas aprobadas: 50%.
	comp := st.SubCompletion(companyA, subID)
	require.NotNil(t, comp)
	assert.Equal(t, 1, comp.CompletedTasks)
	assert.Equal(t, 50, comp.Rate)
	assert.False(t, comp.AllCompleted)
	assert.Nil(t, comp.CompletionDate)

	// La notificación es asíncrona best-effort.
	assert.Eventually(t, func() bool {
		return len(notifier.ReviewedEvents()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestReview_AprobarTodas_CompletaSubproyecto(t *testing.T) {
	uc, st, _ := newFixture(t)

	approveTask(t, uc, task1)
	approveTask(t, uc, task2)

	comp := st.SubCompletion(companyA, subID)
	require.NotNil(t, comp)
	assert.Equal(t, 2, comp.CompletedTasks)
	assert.Equal(t, 100, comp.Rate)
	assert.True(t, comp.AllCompleted)
	require.NotNil(t, comp.CompletionDate, "la fecha de completitud queda fijada al llegar al 100%")

	prog := st.ProjProgress(companyA, projectID)
	require.NotNil(t, prog)
	assert.Equal(t, 100, prog.Rate)
}

func TestReview_Rechaza(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	require.NoError(t, err)
	resp, err := uc.ReviewCompletion(context.Background(), companyA, task1, reviewerID, entity.DecisionReject, "falta evidencia")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, resp.State)
	assert.Equal(t, "falta evidencia", resp.ReviewNote)
}

func TestReview_SinPendiente_InvalidTransition(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.StartTask(context.Background(), companyA, task1, actorUser)
	require.NoError(t, err)
	_, err = uc.ReviewCompletion(context.Background(), companyA, task1, reviewerID, entity.DecisionApprove, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReview_CarreraPerdida_Conflict(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	require.NoError(t, err)
	_, err = uc.ReviewCompletion(context.Background(), companyA, task1, reviewerID, entity.DecisionApprove, "")
	require.NoError(t, err)

	// Segunda revisión sobre la misma tarea: cero filas afectadas y la fila ya
	// quedó decidida, así que el perdedor recibe Conflict, nunca doble efecto.
	_, err = uc.ReviewCompletion(context.Background(), companyA, task1, "consultor-2", entity.DecisionReject, "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReview_DecisionInvalida(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.ReviewCompletion(context.Background(), companyA, task1, reviewerID, "maybe", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetTaskStatus_SinFila_NotFound(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, _, err := uc.GetTaskStatus(context.Background(), companyA, task1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetTaskStatus_AislaPorEmpresa(t *testing.T) {
	uc, st, _ := newFixture(t)
	st.Assign(companyB, subID)

	_, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	require.NoError(t, err)

	// El ledger de la empresa B para la misma tarea es independiente.
	_, _, err = uc.GetTaskStatus(context.Background(), companyB, task1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPendingReviews_OrdenaPorEnvio(t *testing.T) {
	uc, _, _ := newFixture(t)

	_, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	require.NoError(t, err)
	_, err = uc.SubmitCompletion(context.Background(), companyA, task2, actorUser, "")
	require.NoError(t, err)

	out, err := uc.ListPendingReviews(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, task1, out.Items[0].TaskID, "la cola es FIFO por fecha de envío")
	assert.Equal(t, task2, out.Items[1].TaskID)

	// Tras aprobar una, sale de la cola.
	_, err = uc.ReviewCompletion(context.Background(), companyA, task1, reviewerID, entity.DecisionApprove, "")
	require.NoError(t, err)
	out, err = uc.ListPendingReviews(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, task2, out.Items[0].TaskID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// approveTask recorre submit → approve para una tarea de la empresa A.
func approveTask(t *testing.T, uc *completion.UseCase, taskID string) {
	t.Helper()
	_, err := uc.SubmitCompletion(context.Background(), companyA, taskID, actorUser, "")
	require.NoError(t, err)
	_, err = uc.ReviewCompletion(context.Background(), companyA, taskID, reviewerID, entity.DecisionApprove, "")
	require.NoError(t, err)
}

// seedReviewedTask deja t1 en el estado resultante de la decisión indicada.
func seedReviewedTask(t *testing.T, uc *completion.UseCase, decision string) {
	t.Helper()
	_, err := uc.SubmitCompletion(context.Background(), companyA, task1, actorUser, "")
	require.NoError(t, err)
	_, err = uc.ReviewCompletion(context.Background(), companyA, task1, reviewerID, decision, "")
	require.NoError(t, err)
}
