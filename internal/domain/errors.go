package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Terminales (no reintentar): ErrNotFound, ErrUnauthorized, ErrForbidden,
// ErrInvalidTransition, ErrAlreadyExists, ErrNotEligible, ErrClosed, ErrInvalidInput.
// Reintentables con la misma petición: ErrConflict, ErrTransient.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// ErrInvalidTransition: submit/review intentado desde un estado origen ilegal.
	ErrInvalidTransition = errors.New("transición de estado inválida")
	// ErrAlreadyExists: ya existe un reporte de evaluación para (empresa, subproyecto).
	ErrAlreadyExists = errors.New("el recurso ya existe")
	// ErrConflict: el update condicional no afectó filas porque otra petición ganó la carrera.
	ErrConflict = errors.New("conflicto con una mutación concurrente")
	// ErrTransient: timeout o indisponibilidad del store; seguro reintentar la misma petición.
	ErrTransient = errors.New("error transitorio del almacenamiento")
	// ErrNotEligible: el subproyecto no está completo al 100% para la empresa.
	ErrNotEligible = errors.New("no elegible para evaluación")
	// ErrClosed: el subproyecto ya fue evaluado para la empresa; no admite más envíos.
	ErrClosed = errors.New("subproyecto cerrado para la empresa")
)
