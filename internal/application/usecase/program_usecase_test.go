package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Consultoria-api/internal/application/apptest"
	"github.com/jhoicas/Consultoria-api/internal/application/usecase"
	"github.com/jhoicas/Consultoria-api/internal/domain"
)

func newProgramFixture(t *testing.T) *usecase.ProgramUseCase {
	t.Helper()
	st := apptest.NewStore()
	st.AddProject("p1", "Transformación Digital")
	st.AddSubProject("sp1", "p1", "Diagnóstico")
	st.AddTask("t1", "sp1", "Levantar procesos")
	st.AddTask("t2", "sp1", "Mapear sistemas")
	st.AddSubProject("sp2", "p1", "Implementación")
	st.AddTask("t3", "sp2", "Plan de trabajo")
	st.AddProject("p2", "Sostenibilidad")
	return usecase.NewProgramUseCase(st.WorkItems())
}

func TestProgramList_DevuelveArbolAnidado(t *testing.T) {
	uc := newProgramFixture(t)

	resp, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	p1 := resp.Items[0]
	assert.Equal(t, "p1", p1.ID)
	require.Len(t, p1.SubProjects, 2)
	assert.Equal(t, "sp1", p1.SubProjects[0].ID)
	require.Len(t, p1.SubProjects[0].Tasks, 2)
	assert.Equal(t, "t1", p1.SubProjects[0].Tasks[0].ID)
	assert.Equal(t, "t2", p1.SubProjects[0].Tasks[1].ID)
	require.Len(t, p1.SubProjects[1].Tasks, 1)

	// Proyecto sin subproyectos: lista vacía, no nil.
	p2 := resp.Items[1]
	assert.Equal(t, "p2", p2.ID)
	assert.NotNil(t, p2.SubProjects)
	assert.Empty(t, p2.SubProjects)
}

func TestProgramList_RespetaPosicion(t *testing.T) {
	uc := newProgramFixture(t)

	resp, err := uc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Items[0].Position)
	assert.Equal(t, 1, resp.Items[1].Position)
	assert.Equal(t, 0, resp.Items[0].SubProjects[0].Position)
	assert.Equal(t, 1, resp.Items[0].SubProjects[1].Position)
}

func TestProgramGetByID(t *testing.T) {
	uc := newProgramFixture(t)

	resp, err := uc.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Transformación Digital", resp.Name)
	assert.Len(t, resp.SubProjects, 2)
}

func TestProgramGetByID_NoProyecto_NotFound(t *testing.T) {
	uc := newProgramFixture(t)

	_, err := uc.GetByID(context.Background(), "sp1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "solo los proyectos raíz son programas")
	_, err = uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
