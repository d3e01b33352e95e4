package entity

import "time"

// Company representa una organización/tenant del programa (multi-tenant).
// El árbol de trabajo es compartido; todo el estado por empresa vive en
// Assignment y CompanyTaskStatus, nunca duplicando el árbol.
type Company struct {
	ID        string
	Name      string
	NIT       string // NIT colombiano (con o sin dígito de verificación)
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
