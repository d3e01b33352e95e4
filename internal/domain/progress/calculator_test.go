package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	cases := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"sin tareas en alcance", 0, 0, 0},
		{"nada completado", 0, 3, 0},
		{"dos de tres redondea a 67", 2, 3, 67},
		{"uno de tres redondea a 33", 1, 3, 33},
		{"mitad exacta redondea hacia arriba", 1, 2, 50},
		{"uno de seis redondea half-up a 17", 1, 6, 17},
		{"completo", 3, 3, 100},
		{"total negativo se trata como vacío", 0, -1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Rate(tc.completed, tc.total))
		})
	}
}

func TestAllCompleted(t *testing.T) {
	// Con cero tareas en alcance nunca hay completitud (evita elegibilidad espuria).
	assert.False(t, AllCompleted(0, 0))
	assert.False(t, AllCompleted(2, 3))
	assert.True(t, AllCompleted(3, 3))
}

func TestProjectRate_PonderadaPorTareas(t *testing.T) {
	// Subproyecto grande (10 tareas, 0 hechas) + chico (2 tareas, 2 hechas):
	// promedio simple daría 50; la ponderada da 2/12 = 17.
	total, completed, rate := ProjectRate([]SubProjectCounts{
		{TotalTasks: 10, CompletedTasks: 0},
		{TotalTasks: 2, CompletedTasks: 2},
	})
	assert.Equal(t, 12, total)
	assert.Equal(t, 2, completed)
	assert.Equal(t, 17, rate)
}

func TestProjectRate_SinSubproyectos(t *testing.T) {
	total, completed, rate := ProjectRate(nil)
	assert.Zero(t, total)
	assert.Zero(t, completed)
	assert.Zero(t, rate)
}

// Escenario de referencia: 3 tareas, 2 aprobadas tras una ronda de revisión.
func TestRate_EscenarioRevision(t *testing.T) {
	assert.Equal(t, 67, Rate(2, 3))
	assert.False(t, AllCompleted(2, 3))
	assert.Equal(t, 100, Rate(3, 3))
	assert.True(t, AllCompleted(3, 3))
}
