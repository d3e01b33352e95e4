// Package progress contiene la aritmética pura de los agregados de avance.
// Todo es función total del conteo vigente (ledger + alcance); nada aquí
// incrementa contadores ni guarda estado.
package progress

import "github.com/shopspring/decimal"

// Rate porcentaje entero de avance: round(completed/total*100), redondeo
// half-up vía decimal para evitar deriva de floats. 0 si total es 0.
func Rate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	r := decimal.NewFromInt(int64(completed) * 100).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(r.IntPart())
}

// AllCompleted informa si el subproyecto quedó completo:
// total > 0 y completed == total. Con cero tareas en alcance nunca es true.
func AllCompleted(completed, total int) bool {
	return total > 0 && completed == total
}

// SubProjectCounts conteos de un subproyecto para la fórmula ponderada.
type SubProjectCounts struct {
	TotalTasks     int
	CompletedTasks int
}

// ProjectRate agrega subproyectos con la fórmula ponderada por número de
// tareas: ΣCompleted/ΣTotal. Un subproyecto con más tareas pesa
// proporcionalmente más; NO es el promedio simple de las tasas.
func ProjectRate(subs []SubProjectCounts) (totalTasks, completedTasks, rate int) {
	for _, s := range subs {
		totalTasks += s.TotalTasks
		completedTasks += s.CompletedTasks
	}
	return totalTasks, completedTasks, Rate(completedTasks, totalTasks)
}
