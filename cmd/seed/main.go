// seed genera el script SQL que puebla el árbol de trabajo del programa
// (proyectos, subproyectos y tareas) a partir del CSV exportado por el equipo
// de consultoría. El export viene de Excel en ISO-8859-1 con separador ';':
//
//	proyecto;subproyecto;tarea;descripcion
//
// Uso: go run ./cmd/seed [ruta/arbol.csv]
// Por defecto busca arbol.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_work_items.sql
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type node struct {
	id          string
	name        string
	description string
	position    int
	children    []*node
}

func main() {
	csvPath := "arbol.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	// Construir el árbol preservando el orden de aparición.
	var projects []*node
	projectIdx := make(map[string]*node)
	subIdx := make(map[string]*node) // clave proyecto|subproyecto
	tasks := 0
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "proyecto") {
			continue // cabecera
		}
		if len(rec) < 3 {
			continue
		}
		projectName := strings.TrimSpace(rec[0])
		subName := strings.TrimSpace(rec[1])
		taskName := strings.TrimSpace(rec[2])
		description := ""
		if len(rec) > 3 {
			description = strings.TrimSpace(rec[3])
		}
		if projectName == "" || subName == "" || taskName == "" {
			continue
		}

		p, ok := projectIdx[projectName]
		if !ok {
			p = &node{id: uuid.New().String(), name: projectName, position: len(projects)}
			projectIdx[projectName] = p
			projects = append(projects, p)
		}
		subKey := projectName + "|" + subName
		sp, ok := subIdx[subKey]
		if !ok {
			sp = &node{id: uuid.New().String(), name: subName, position: len(p.children)}
			subIdx[subKey] = sp
			p.children = append(p.children, sp)
		}
		sp.children = append(sp.children, &node{
			id:          uuid.New().String(),
			name:        taskName,
			description: description,
			position:    len(sp.children),
		})
		tasks++
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_work_items.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Árbol de trabajo del programa de consultoría\n")
	out.WriteString("-- Generado desde el CSV del equipo de consultoría\n\n")
	subs := 0
	for _, p := range projects {
		fmt.Fprintf(out, "INSERT INTO work_items (id, parent_id, level, name, description, position) VALUES\n")
		fmt.Fprintf(out, "  ('%s', NULL, 'project', '%s', '', %d)\nON CONFLICT (id) DO NOTHING;\n",
			p.id, escapeSQL(p.name), p.position)
		for _, sp := range p.children {
			subs++
			fmt.Fprintf(out, "INSERT INTO work_items (id, parent_id, level, name, description, position) VALUES\n")
			fmt.Fprintf(out, "  ('%s', '%s', 'sub_project', '%s', '', %d)\nON CONFLICT (id) DO NOTHING;\n",
				sp.id, p.id, escapeSQL(sp.name), sp.position)
			for _, t := range sp.children {
				fmt.Fprintf(out, "INSERT INTO work_items (id, parent_id, level, name, description, position) VALUES\n")
				fmt.Fprintf(out, "  ('%s', '%s', 'task', '%s', '%s', %d)\nON CONFLICT (id) DO NOTHING;\n",
					t.id, sp.id, escapeSQL(t.name), escapeSQL(t.description), t.position)
			}
		}
		out.WriteString("\n")
	}

	fmt.Printf("Generado %s: %d proyectos, %d subproyectos, %d tareas\n", outPath, len(projects), subs, tasks)
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
