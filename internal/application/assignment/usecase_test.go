package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultoria-api/internal/application/apptest"
	"github.com/jhoicas/Consultoria-api/internal/application/assignment"
	"github.com/jhoicas/Consultoria-api/internal/application/dto"
	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/pkg/logger"
)

const companyID = "empresa-a"

// newFixture árbol p1 → {sp1 → {t1, t2}, sp2 → {t3}}, sin asignaciones.
func newFixture(t *testing.T) (*assignment.UseCase, *apptest.Store) {
	t.Helper()
	st := apptest.NewStore()
	st.AddCompany(companyID, "Empresa A")
	st.AddProject("p1", "Transformación Digital")
	st.AddSubProject("sp1", "p1", "Diagnóstico")
	st.AddTask("t1", "sp1", "Levantar procesos")
	st.AddTask("t2", "sp1", "Mapear sistemas")
	st.AddSubProject("sp2", "p1", "Implementación")
	st.AddTask("t3", "sp2", "Plan de trabajo")

	uc := assignment.NewUseCase(
		apptest.NewTxRunner(st), st.WorkItems(), st.Assignments(), st.Companies(),
		logger.Nop(), time.Second,
	)
	return uc, st
}

func TestAssign_SubproyectoImplicaSusTareas(t *testing.T) {
	uc, _ := newFixture(t)

	resp, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)
	assert.Equal(t, entity.AssignmentActive, resp.Status)
	assert.Equal(t, entity.LevelSubProject, resp.Level)

	scope, err := uc.ResolveScope(context.Background(), companyID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, scope.TaskIDs)
	assert.Equal(t, 2, scope.Total)
	require.Len(t, scope.Assignments, 1, "el alcance reporta las asignaciones activas que lo originan")
	assert.Equal(t, "sp1", scope.Assignments[0].WorkItemID)
	assert.Equal(t, entity.AssignmentActive, scope.Assignments[0].Status)
}

func TestAssign_ProyectoImplicaTodoElSubarbol(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "p1"})
	require.NoError(t, err)

	scope, err := uc.ResolveScope(context.Background(), companyID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, scope.TaskIDs)
}

func TestAssign_SolapadasNoDuplicanAlcance(t *testing.T) {
	uc, _ := newFixture(t)

	// Asignar el subproyecto y una de sus tareas: la unión se deduplica.
	_, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)
	_, err = uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "t1"})
	require.NoError(t, err)

	scope, err := uc.ResolveScope(context.Background(), companyID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2"}, scope.TaskIDs)
	assert.Equal(t, 2, scope.Total)
}

func TestAssign_MaterializaAgregados(t *testing.T) {
	uc, st := newFixture(t)

	_, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)

	comp := st.SubCompletion(companyID, "sp1")
	require.NotNil(t, comp, "asignar deja el agregado del subproyecto materializado")
	assert.Equal(t, 2, comp.TotalTasks)
	assert.Equal(t, 0, comp.CompletedTasks)

	prog := st.ProjProgress(companyID, "p1")
	require.NotNil(t, prog)
	assert.Equal(t, 2, prog.TotalTasks)
}

func TestAssign_Idempotente(t *testing.T) {
	uc, _ := newFixture(t)

	first, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)
	second, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "reasignar algo activo devuelve la fila vigente")
}

func TestAssign_EmpresaInexistente_NotFound(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: "no-existe", WorkItemID: "sp1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssign_WorkItemInexistente_NotFound(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevoke_SacaLasTareasDelAlcance(t *testing.T) {
	uc, st := newFixture(t)

	_, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)
	err = uc.Revoke(context.Background(), dto.RevokeRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)

	scope, err := uc.ResolveScope(context.Background(), companyID)
	require.NoError(t, err)
	assert.Empty(t, scope.TaskIDs)
	assert.Empty(t, scope.Assignments, "la asignación revocada no figura entre las activas")

	// El agregado se recomputa a cero, no se borra.
	comp := st.SubCompletion(companyID, "sp1")
	require.NotNil(t, comp)
	assert.Equal(t, 0, comp.TotalTasks)
}

func TestRevoke_ConservaElLedger(t *testing.T) {
	uc, st := newFixture(t)

	_, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)
	st.SeedTaskState(companyID, "t1", entity.StatusApproved)

	err = uc.Revoke(context.Background(), dto.RevokeRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)

	// Reactivar restaura el alcance y el avance previo sigue contando.
	_, err = uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)

	comp := st.SubCompletion(companyID, "sp1")
	require.NotNil(t, comp)
	assert.Equal(t, 2, comp.TotalTasks)
	assert.Equal(t, 1, comp.CompletedTasks, "la revocación es soft-delete: la historia no se pierde")
}

func TestRevoke_Inexistente_NotFound(t *testing.T) {
	uc, _ := newFixture(t)

	err := uc.Revoke(context.Background(), dto.RevokeRequest{CompanyID: companyID, WorkItemID: "sp1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevoke_YaRevocada_Idempotente(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.Assign(context.Background(), dto.AssignRequest{CompanyID: companyID, WorkItemID: "sp1"})
	require.NoError(t, err)
	require.NoError(t, uc.Revoke(context.Background(), dto.RevokeRequest{CompanyID: companyID, WorkItemID: "sp1"}))
	assert.NoError(t, uc.Revoke(context.Background(), dto.RevokeRequest{CompanyID: companyID, WorkItemID: "sp1"}))
}

func TestResolveScope_EmpresaInexistente_NotFound(t *testing.T) {
	uc, _ := newFixture(t)

	_, err := uc.ResolveScope(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
