package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultoria-api/internal/application/apptest"
	"github.com/jhoicas/Consultoria-api/internal/application/progress"
	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

const companyID = "empresa-a"

// newFixture árbol con dos subproyectos de peso desigual:
//
//	p1 → sp1 → {t1, t2}         (2 tareas)
//	p1 → sp2 → {t3, t4, t5, t6} (4 tareas)
//
// La empresa tiene asignado el proyecto completo.
func newFixture(t *testing.T) (*progress.UseCase, *apptest.Store) {
	t.Helper()
	st := apptest.NewStore()
	st.AddCompany(companyID, "Empresa A")
	st.AddProject("p1", "Transformación Digital")
	st.AddSubProject("sp1", "p1", "Diagnóstico")
	st.AddTask("t1", "sp1", "Levantar procesos")
	st.AddTask("t2", "sp1", "Mapear sistemas")
	st.AddSubProject("sp2", "p1", "Implementación")
	st.AddTask("t3", "sp2", "Plan de trabajo")
	st.AddTask("t4", "sp2", "Piloto")
	st.AddTask("t5", "sp2", "Despliegue")
	st.AddTask("t6", "sp2", "Cierre")
	st.Assign(companyID, "p1")

	uc := progress.NewUseCase(
		apptest.NewTxRunner(st), st.WorkItems(), st.Assignments(), st.TaskStatuses(),
		st.Progress(), logger.Nop(), time.Second,
	)
	return uc, st
}

func TestGetSubProjectCompletion_MaterializaBajoDemanda(t *testing.T) {
	uc, st := newFixture(t)

	require.Nil(t, st.SubCompletion(companyID, "sp1"), "sin agregado materializado aún")

	resp, err := uc.GetSubProjectCompletion(context.Background(), companyID, "sp1")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalTasks)
	assert.Equal(t, 0, resp.CompletedTasks)
	assert.Equal(t, 0, resp.Rate)
	assert.False(t, resp.AllCompleted)

	// La lectura dejó el agregado materializado.
	assert.NotNil(t, st.SubCompletion(companyID, "sp1"))
}

func TestGetSubProjectCompletion_NodoEquivocado_NotFound(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.GetSubProjectCompletion(context.Background(), companyID, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "solo subproyectos tienen agregado de completitud")
	_, err = uc.GetSubProjectCompletion(context.Background(), companyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetSubProjectCompletion_TasaParcial(t *testing.T) {
	uc, st := newFixture(t)

	// 1 de 4 tareas aprobadas en sp2.
	st.SeedTaskState(companyID, "t3", entity.StatusApproved)
	resp, err := uc.GetSubProjectCompletion(context.Background(), companyID, "sp2")
	require.NoError(t, err)
	assert.Equal(t, 25, resp.Rate)
}

func TestGetProjectProgress_FormulaPonderada(t *testing.T) {
	uc, st := newFixture(t)

	// sp1 completo (2/2), sp2 en cero (0/4). Promedio simple daría 50;
	// la fórmula ponderada por tareas da 2/6 = 33.
	st.SeedTaskState(companyID, "t1", entity.StatusApproved)
	st.SeedTaskState(companyID, "t2", entity.StatusApproved)

	resp, err := uc.GetProjectProgress(context.Background(), companyID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 6, resp.TotalTasks)
	assert.Equal(t, 2, resp.CompletedTasks)
	assert.Equal(t, 33, resp.Rate)
}

func TestGetProjectProgress_RedondeoDosTercios(t *testing.T) {
	uc, st := newFixture(t)

	// 4 de 6 = 66.67 → 67 con redondeo half-up.
	st.SeedTaskState(companyID, "t1", entity.StatusApproved)
	st.SeedTaskState(companyID, "t2", entity.StatusApproved)
	st.SeedTaskState(companyID, "t3", entity.StatusApproved)
	st.SeedTaskState(companyID, "t4", entity.StatusApproved)

	resp, err := uc.GetProjectProgress(context.Background(), companyID, "p1")
	require.NoError(t, err)
	assert.Equal(t, 67, resp.Rate)
}

func TestGetSubProjectCompletion_SoloAprobadasCuentan(t *testing.T) {
	uc, st := newFixture(t)

	st.SeedTaskState(companyID, "t1", entity.StatusPendingApproval)
	st.SeedTaskState(companyID, "t2", entity.StatusRejected)

	resp, err := uc.GetSubProjectCompletion(context.Background(), companyID, "sp1")
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CompletedTasks, "pending_approval y rejected no suman avance")
}

func TestCompletionDate_SePreservaEntreRecomputos(t *testing.T) {
	uc, st := newFixture(t)

	st.SeedTaskState(companyID, "t1", entity.StatusApproved)
	st.SeedTaskState(companyID, "t2", entity.StatusApproved)

	first, err := uc.GetSubProjectCompletion(context.Background(), companyID, "sp1")
	require.NoError(t, err)
	require.True(t, first.AllCompleted)
	require.NotNil(t, first.CompletionDate)

	// Reconciliar recomputa todo; la fecha original no debe moverse.
	time.Sleep(5 * time.Millisecond)
	_, err = uc.Reconcile(context.Background(), companyID)
	require.NoError(t, err)

	second := st.SubCompletion(companyID, "sp1")
	require.NotNil(t, second.CompletionDate)
	assert.True(t, first.CompletionDate.Equal(*second.CompletionDate),
		"la fecha de completitud se fija una sola vez mientras siga al 100%")
}

func TestCompletionDate_SeLimpiaSiDejaDeEstarCompleto(t *testing.T) {
	uc, st := newFixture(t)

	st.SeedTaskState(companyID, "t1", entity.StatusApproved)
	st.SeedTaskState(companyID, "t2", entity.StatusApproved)
	resp, err := uc.GetSubProjectCompletion(context.Background(), companyID, "sp1")
	require.NoError(t, err)
	require.True(t, resp.AllCompleted)

	// Amplía el alcance: una tarea nueva en sp1 baja el avance a 2/3.
	st.AddTask("t7", "sp1", "Informe final")
	_, err = uc.Reconcile(context.Background(), companyID)
	require.NoError(t, err)

	after := st.SubCompletion(companyID, "sp1")
	assert.False(t, after.AllCompleted)
	assert.Nil(t, after.CompletionDate)
	assert.Equal(t, 67, after.Rate)
}

func TestDashboard_AgrupaProyectosConSubproyectos(t *testing.T) {
	uc, st := newFixture(t)

	st.SeedTaskState(companyID, "t1", entity.StatusApproved)

	resp, err := uc.Dashboard(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "p1", resp.Projects[0].Project.ProjectID)
	require.Len(t, resp.Projects[0].SubProjects, 2)
	assert.Equal(t, "sp1", resp.Projects[0].SubProjects[0].SubProjectID)
	assert.Equal(t, 50, resp.Projects[0].SubProjects[0].Rate)
	assert.Equal(t, "sp2", resp.Projects[0].SubProjects[1].SubProjectID)
	assert.Equal(t, 0, resp.Projects[0].SubProjects[1].Rate)
}

func TestDashboard_SinAsignaciones_Vacio(t *testing.T) {
	uc, _ := newFixture(t)

	resp, err := uc.Dashboard(context.Background(), "empresa-sin-alcance")
	require.NoError(t, err)
	assert.Empty(t, resp.Projects)
}

func TestReconcile_CuentaAgregados(t *testing.T) {
	uc, _ := newFixture(t)

	resp, err := uc.Reconcile(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, companyID, resp.CompanyID)
	assert.Equal(t, 2, resp.SubProjectsRecomputed)
	assert.Equal(t, 1, resp.ProjectsRecomputed)
}

func TestReconcile_CorrigeAgregadoDesfasado(t *testing.T) {
	uc, st := newFixture(t)

	// Agregado manipulado fuera de línea con el ledger.
	err := st.Progress().UpsertSubProjectCompletion(context.Background(), &entity.SubProjectCompletion{
		CompanyID:      companyID,
		SubProjectID:   "sp1",
		TotalTasks:     99,
		CompletedTasks: 99,
		Rate:           100,
		AllCompleted:   true,
		UpdatedAt:      time.Now(),
	})
	require.NoError(t, err)

	_, err = uc.Reconcile(context.Background(), companyID)
	require.NoError(t, err)

	fixed := st.SubCompletion(companyID, "sp1")
	assert.Equal(t, 2, fixed.TotalTasks)
	assert.Equal(t, 0, fixed.CompletedTasks)
	assert.False(t, fixed.AllCompleted)
}
