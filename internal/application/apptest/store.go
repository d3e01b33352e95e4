// Package apptest provee implementaciones en memoria de los puertos de
// persistencia para las pruebas de los casos de uso. Reproducen el contrato
// de los repos de PostgreSQL (updates condicionales que retornan filas
// afectadas, nil para no-encontrado, errores de dominio envueltos) sin
// levantar una base de datos.
package apptest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Consultoria-api/internal/domain"
	"github.com/jhoicas/Consultoria-api/internal/domain/entity"
	"github.com/jhoicas/Consultoria-api/internal/domain/repository"
)

// Store estado compartido de todos los fakes. Los repos que devuelve son
// vistas sobre los mismos mapas, igual que los repos reales comparten el pool.
type Store struct {
	mu sync.Mutex

	workItems   map[string]*entity.WorkItem
	order       []string // ids de work items en orden de inserción
	companies   map[string]*entity.Company
	assignments map[string]*entity.Assignment // clave: company|workItem
	statuses    map[string]*entity.CompanyTaskStatus
	transitions []*entity.TaskStatusTransition
	subComps    map[string]*entity.SubProjectCompletion
	projProg    map[string]*entity.ProjectProgress
	reports     map[string]*entity.EvaluationReport
	reportOrder []string
	users       map[string]*entity.User
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		workItems:   make(map[string]*entity.WorkItem),
		companies:   make(map[string]*entity.Company),
		assignments: make(map[string]*entity.Assignment),
		statuses:    make(map[string]*entity.CompanyTaskStatus),
		subComps:    make(map[string]*entity.SubProjectCompletion),
		projProg:    make(map[string]*entity.ProjectProgress),
		reports:     make(map[string]*entity.EvaluationReport),
		users:       make(map[string]*entity.User),
	}
}

func key2(a, b string) string { return a + "|" + b }

// ──────────────────────────────────────────────────────────────────────────────
// Seeding
// ──────────────────────────────────────────────────────────────────────────────

// AddCompany registra una empresa activa.
func (s *Store) AddCompany(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.companies[id] = &entity.Company{ID: id, Name: name, Status: "active", CreatedAt: now, UpdatedAt: now}
}

// AddProject agrega un proyecto raíz al árbol.
func (s *Store) AddProject(id, name string) {
	s.addWorkItem(id, nil, entity.LevelProject, name)
}

// AddSubProject agrega un subproyecto bajo un proyecto.
func (s *Store) AddSubProject(id, projectID, name string) {
	s.addWorkItem(id, &projectID, entity.LevelSubProject, name)
}

// AddTask agrega una tarea bajo un subproyecto.
func (s *Store) AddTask(id, subProjectID, name string) {
	s.addWorkItem(id, &subProjectID, entity.LevelTask, name)
}

func (s *Store) addWorkItem(id string, parentID *string, level, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := 0
	for _, otherID := range s.order {
		other := s.workItems[otherID]
		sameParent := (other.ParentID == nil && parentID == nil) ||
			(other.ParentID != nil && parentID != nil && *other.ParentID == *parentID)
		if sameParent {
			pos++
		}
	}
	now := time.Now()
	s.workItems[id] = &entity.WorkItem{
		ID: id, ParentID: parentID, Level: level, Name: name,
		Position: pos, CreatedAt: now, UpdatedAt: now,
	}
	s.order = append(s.order, id)
}

// Assign registra directamente una asignación activa (sin pasar por el caso de uso).
func (s *Store) Assign(companyID, workItemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wi := s.workItems[workItemID]
	level := ""
	if wi != nil {
		level = wi.Level
	}
	now := time.Now()
	s.assignments[key2(companyID, workItemID)] = &entity.Assignment{
		ID:         "assign-" + companyID + "-" + workItemID,
		CompanyID:  companyID,
		WorkItemID: workItemID,
		Level:      level,
		Status:     entity.AssignmentActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SeedTaskState planta una fila del ledger en el estado indicado.
func (s *Store) SeedTaskState(companyID, taskID, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	row := &entity.CompanyTaskStatus{
		ID:        "status-" + companyID + "-" + taskID,
		CompanyID: companyID,
		TaskID:    taskID,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if state == entity.StatusPendingApproval {
		at := now
		row.SubmittedAt = &at
	}
	s.statuses[key2(companyID, taskID)] = row
}

// SubCompletion devuelve una copia del agregado (empresa, subproyecto), o nil.
func (s *Store) SubCompletion(companyID, subProjectID string) *entity.SubProjectCompletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySubCompletion(s.subComps[key2(companyID, subProjectID)])
}

// ProjProgress devuelve una copia del agregado (empresa, proyecto), o nil.
func (s *Store) ProjProgress(companyID, projectID string) *entity.ProjectProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.projProg[key2(companyID, projectID)]
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// ──────────────────────────────────────────────────────────────────────────────
// Vistas repo
// ──────────────────────────────────────────────────────────────────────────────

// WorkItems vista de lectura del árbol.
func (s *Store) WorkItems() repository.WorkItemRepository { return &workItemRepo{s} }

// Assignments vista del registro de asignaciones y resolución de alcance.
func (s *Store) Assignments() repository.AssignmentRepository { return &assignmentRepo{s} }

// TaskStatuses vista del ledger de completitud.
func (s *Store) TaskStatuses() repository.TaskStatusRepository { return &taskStatusRepo{s} }

// Progress vista de los agregados materializados.
func (s *Store) Progress() repository.ProgressRepository { return &progressRepo{s} }

// Reports vista de los reportes de evaluación.
func (s *Store) Reports() repository.ReportRepository { return &reportRepo{s} }

// Companies vista del registro de empresas.
func (s *Store) Companies() repository.CompanyRepository { return &companyRepo{s} }

// Users vista del registro de usuarios.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// ──────────────────────────────────────────────────────────────────────────────
// WorkItemRepository
// ──────────────────────────────────────────────────────────────────────────────

type workItemRepo struct{ s *Store }

func (r *workItemRepo) GetByID(_ context.Context, id string) (*entity.WorkItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyWorkItem(r.s.workItems[id]), nil
}

func (r *workItemRepo) ListProjects(_ context.Context) ([]*entity.WorkItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.WorkItem
	for _, id := range r.s.order {
		if wi := r.s.workItems[id]; wi.Level == entity.LevelProject {
			out = append(out, copyWorkItem(wi))
		}
	}
	sortByPosition(out)
	return out, nil
}

func (r *workItemRepo) ListChildren(_ context.Context, parentID string) ([]*entity.WorkItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.WorkItem
	for _, id := range r.s.order {
		wi := r.s.workItems[id]
		if wi.ParentID != nil && *wi.ParentID == parentID {
			out = append(out, copyWorkItem(wi))
		}
	}
	sortByPosition(out)
	return out, nil
}

func (r *workItemRepo) TaskParents(_ context.Context, taskID string) (*entity.TaskParents, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.workItems[taskID]
	if t == nil || t.Level != entity.LevelTask || t.ParentID == nil {
		return nil, nil
	}
	sub := r.s.workItems[*t.ParentID]
	if sub == nil || sub.ParentID == nil {
		return nil, nil
	}
	return &entity.TaskParents{SubProjectID: sub.ID, ProjectID: *sub.ParentID}, nil
}

func (r *workItemRepo) SubProjectIDsUnder(_ context.Context, workItemID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wi := r.s.workItems[workItemID]
	if wi == nil {
		return nil, nil
	}
	switch wi.Level {
	case entity.LevelSubProject:
		return []string{wi.ID}, nil
	case entity.LevelTask:
		if wi.ParentID == nil {
			return nil, nil
		}
		return []string{*wi.ParentID}, nil
	default: // project
		var out []string
		for _, id := range r.s.order {
			child := r.s.workItems[id]
			if child.ParentID != nil && *child.ParentID == workItemID {
				out = append(out, child.ID)
			}
		}
		return out, nil
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AssignmentRepository
// ──────────────────────────────────────────────────────────────────────────────

type assignmentRepo struct{ s *Store }

func (r *assignmentRepo) Get(_ context.Context, companyID, workItemID string) (*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.s.assignments[key2(companyID, workItemID)]
	if a == nil {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *assignmentRepo) Create(_ context.Context, a *entity.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key2(a.CompanyID, a.WorkItemID)
	if _, exists := r.s.assignments[k]; exists {
		return fmt.Errorf("insert assignment: %w", domain.ErrAlreadyExists)
	}
	cp := *a
	r.s.assignments[k] = &cp
	return nil
}

func (r *assignmentRepo) SetStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.ID == id {
			a.Status = status
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *assignmentRepo) ListActiveByCompany(_ context.Context, companyID string) ([]*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Assignment
	for _, a := range r.s.assignments {
		if a.CompanyID == companyID && a.Status == entity.AssignmentActive {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *assignmentRepo) ScopeTaskIDs(_ context.Context, companyID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.scopeTaskIDs(companyID), nil
}

func (r *assignmentRepo) ScopeTaskIDsOfSubProject(_ context.Context, companyID, subProjectID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, taskID := range r.s.scopeTaskIDs(companyID) {
		t := r.s.workItems[taskID]
		if t != nil && t.ParentID != nil && *t.ParentID == subProjectID {
			out = append(out, taskID)
		}
	}
	return out, nil
}

func (r *assignmentRepo) InScope(_ context.Context, companyID, taskID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.scopeTaskIDs(companyID) {
		if id == taskID {
			return true, nil
		}
	}
	return false, nil
}

func (r *assignmentRepo) ScopeProjectIDs(_ context.Context, companyID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inScope := toSet(r.s.scopeTaskIDs(companyID))
	seen := make(map[string]struct{})
	var out []string
	for _, id := range r.s.order {
		t := r.s.workItems[id]
		if t.Level != entity.LevelTask {
			continue
		}
		if _, ok := inScope[t.ID]; !ok {
			continue
		}
		sub := r.s.workItems[*t.ParentID]
		projectID := *sub.ParentID
		if _, dup := seen[projectID]; !dup {
			seen[projectID] = struct{}{}
			out = append(out, projectID)
		}
	}
	return out, nil
}

func (r *assignmentRepo) ScopeSubProjectIDs(_ context.Context, companyID, projectID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inScope := toSet(r.s.scopeTaskIDs(companyID))
	seen := make(map[string]struct{})
	var out []string
	for _, id := range r.s.order {
		t := r.s.workItems[id]
		if t.Level != entity.LevelTask {
			continue
		}
		if _, ok := inScope[t.ID]; !ok {
			continue
		}
		sub := r.s.workItems[*t.ParentID]
		if *sub.ParentID != projectID {
			continue
		}
		if _, dup := seen[sub.ID]; !dup {
			seen[sub.ID] = struct{}{}
			out = append(out, sub.ID)
		}
	}
	return out, nil
}

// scopeTaskIDs unión deduplicada de tareas bajo las asignaciones activas.
// Requiere s.mu tomado.
func (s *Store) scopeTaskIDs(companyID string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(taskID string) {
		if _, dup := seen[taskID]; !dup {
			seen[taskID] = struct{}{}
			out = append(out, taskID)
		}
	}
	for _, id := range s.order {
		t := s.workItems[id]
		if t.Level != entity.LevelTask {
			continue
		}
		sub := s.workItems[*t.ParentID]
		for _, ancestor := range []string{t.ID, sub.ID, *sub.ParentID} {
			if a := s.assignments[key2(companyID, ancestor)]; a != nil && a.Status == entity.AssignmentActive {
				add(t.ID)
				break
			}
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// TaskStatusRepository
// ──────────────────────────────────────────────────────────────────────────────

type taskStatusRepo struct{ s *Store }

func (r *taskStatusRepo) Get(_ context.Context, companyID, taskID string) (*entity.CompanyTaskStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyStatus(r.s.statuses[key2(companyID, taskID)]), nil
}

func (r *taskStatusRepo) Insert(_ context.Context, row *entity.CompanyTaskStatus) error {
	if !entity.ValidState(row.State) {
		return fmt.Errorf("insert task status: estado %q: %w", row.State, domain.ErrInvalidInput)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key2(row.CompanyID, row.TaskID)
	if _, exists := r.s.statuses[k]; exists {
		return fmt.Errorf("insert task status: %w", domain.ErrConflict)
	}
	r.s.statuses[k] = copyStatus(row)
	return nil
}

func (r *taskStatusRepo) MarkSubmitted(_ context.Context, companyID, taskID, note string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row := r.s.statuses[key2(companyID, taskID)]
	if row == nil || !entity.CanSubmit(row.State) {
		return 0, nil
	}
	row.State = entity.StatusPendingApproval
	row.SubmittedAt = &at
	row.SubmissionNote = note
	row.ReviewerID = nil
	row.ReviewedAt = nil
	row.ReviewNote = ""
	row.UpdatedAt = at
	return 1, nil
}

func (r *taskStatusRepo) MarkReviewed(_ context.Context, companyID, taskID, reviewerID, toState, note string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row := r.s.statuses[key2(companyID, taskID)]
	if row == nil || !entity.CanReview(row.State) {
		return 0, nil
	}
	row.State = toState
	row.ReviewerID = &reviewerID
	row.ReviewedAt = &at
	row.ReviewNote = note
	row.UpdatedAt = at
	return 1, nil
}

func (r *taskStatusRepo) AppendTransition(_ context.Context, t *entity.TaskStatusTransition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.transitions = append(r.s.transitions, &cp)
	return nil
}

func (r *taskStatusRepo) ListTransitions(_ context.Context, companyID, taskID string) ([]*entity.TaskStatusTransition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TaskStatusTransition
	for _, t := range r.s.transitions {
		if t.CompanyID == companyID && t.TaskID == taskID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *taskStatusRepo) CountApproved(_ context.Context, companyID string, taskIDs []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, taskID := range taskIDs {
		if row := r.s.statuses[key2(companyID, taskID)]; row != nil && row.State == entity.StatusApproved {
			n++
		}
	}
	return n, nil
}

func (r *taskStatusRepo) ListPendingApproval(_ context.Context, limit, offset int) ([]*entity.CompanyTaskStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.CompanyTaskStatus
	for _, row := range r.s.statuses {
		if row.State == entity.StatusPendingApproval {
			all = append(all, copyStatus(row))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.SubmittedAt != nil && b.SubmittedAt != nil && !a.SubmittedAt.Equal(*b.SubmittedAt) {
			return a.SubmittedAt.Before(*b.SubmittedAt)
		}
		return a.ID < b.ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// ProgressRepository
// ──────────────────────────────────────────────────────────────────────────────

type progressRepo struct{ s *Store }

func (r *progressRepo) UpsertSubProjectCompletion(_ context.Context, c *entity.SubProjectCompletion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := key2(c.CompanyID, c.SubProjectID)
	prev := r.s.subComps[k]
	row := copySubCompletion(c)
	// Mismas reglas que el upsert SQL: evaluated solo muta vía MarkEvaluated y
	// la fecha de completitud se conserva mientras siga al 100%.
	if prev != nil {
		row.Evaluated = prev.Evaluated
	}
	if row.AllCompleted {
		if prev != nil && prev.CompletionDate != nil {
			row.CompletionDate = prev.CompletionDate
		} else if row.CompletionDate == nil {
			at := row.UpdatedAt
			row.CompletionDate = &at
		}
	} else {
		row.CompletionDate = nil
	}
	r.s.subComps[k] = row
	return nil
}

func (r *progressRepo) GetSubProjectCompletion(_ context.Context, companyID, subProjectID string) (*entity.SubProjectCompletion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copySubCompletion(r.s.subComps[key2(companyID, subProjectID)]), nil
}

func (r *progressRepo) ListSubProjectCompletions(_ context.Context, companyID string) ([]*entity.SubProjectCompletion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SubProjectCompletion
	for _, c := range r.s.subComps {
		if c.CompanyID == companyID {
			out = append(out, copySubCompletion(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubProjectID < out[j].SubProjectID })
	return out, nil
}

func (r *progressRepo) UpsertProjectProgress(_ context.Context, p *entity.ProjectProgress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.projProg[key2(p.CompanyID, p.ProjectID)] = &cp
	return nil
}

func (r *progressRepo) GetProjectProgress(_ context.Context, companyID, projectID string) (*entity.ProjectProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.projProg[key2(companyID, projectID)]
	if p == nil {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *progressRepo) MarkEvaluated(_ context.Context, companyID, subProjectID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.s.subComps[key2(companyID, subProjectID)]
	if c == nil || !c.AllCompleted || c.Evaluated {
		return 0, nil
	}
	c.Evaluated = true
	c.UpdatedAt = at
	return 1, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// ReportRepository
// ──────────────────────────────────────────────────────────────────────────────

type reportRepo struct{ s *Store }

func (r *reportRepo) Create(_ context.Context, rep *entity.EvaluationReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reports {
		if existing.CompanyID == rep.CompanyID && existing.SubProjectID == rep.SubProjectID {
			return fmt.Errorf("insert evaluation report: %w", domain.ErrAlreadyExists)
		}
	}
	cp := *rep
	r.s.reports[rep.ID] = &cp
	r.s.reportOrder = append(r.s.reportOrder, rep.ID)
	return nil
}

func (r *reportRepo) GetByID(_ context.Context, id string) (*entity.EvaluationReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep := r.s.reports[id]
	if rep == nil {
		return nil, nil
	}
	cp := *rep
	return &cp, nil
}

func (r *reportRepo) GetByCompanyAndSubProject(_ context.Context, companyID, subProjectID string) (*entity.EvaluationReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rep := range r.s.reports {
		if rep.CompanyID == companyID && rep.SubProjectID == subProjectID {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *reportRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.EvaluationReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.EvaluationReport
	// Más reciente primero, como el repo real.
	for i := len(r.s.reportOrder) - 1; i >= 0; i-- {
		rep := r.s.reports[r.s.reportOrder[i]]
		if rep.CompanyID == companyID {
			cp := *rep
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *reportRepo) MarkPublished(_ context.Context, id string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep := r.s.reports[id]
	if rep == nil || rep.Status != entity.ReportDraft {
		return 0, nil
	}
	rep.Status = entity.ReportPublished
	rep.PublishedAt = &at
	rep.UpdatedAt = at
	return 1, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// CompanyRepository
// ──────────────────────────────────────────────────────────────────────────────

type companyRepo struct{ s *Store }

func (r *companyRepo) Create(c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r *companyRepo) GetByID(id string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.s.companies[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *companyRepo) GetByNIT(nit string) (*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.companies {
		if c.NIT == nit {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *companyRepo) Update(c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.s.companies[c.ID] = &cp
	return nil
}

func (r *companyRepo) List(limit, offset int) ([]*entity.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Company
	for _, c := range r.s.companies {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// UserRepository
// ──────────────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r *userRepo) Create(u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("insert user: %w", domain.ErrEmailAlreadyExists)
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *userRepo) GetByID(id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := r.s.users[id]
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) FindByEmail(email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByEmailAndCompany(email, companyID string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email && u.CompanyID == companyID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// SetUserStatus cambia el status de un usuario sembrado.
func (s *Store) SetUserStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.users[id]; u != nil {
		u.Status = status
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner y Notifier
// ──────────────────────────────────────────────────────────────────────────────

// TxRunner ejecuta los callbacks sobre el store y emula la atomicidad de la
// transacción real: si el callback falla, el estado mutable vuelve al punto
// previo, igual que un ROLLBACK.
type TxRunner struct{ S *Store }

// NewTxRunner construye el runner de pruebas.
func NewTxRunner(s *Store) *TxRunner { return &TxRunner{S: s} }

// Run implementa ports.TxRunner.
func (t *TxRunner) Run(_ context.Context, fn func(
	statusRepo repository.TaskStatusRepository,
	assignRepo repository.AssignmentRepository,
	workItemRepo repository.WorkItemRepository,
	progressRepo repository.ProgressRepository,
) error) error {
	snap := t.S.snapshot()
	if err := fn(t.S.TaskStatuses(), t.S.Assignments(), t.S.WorkItems(), t.S.Progress()); err != nil {
		t.S.restore(snap)
		return err
	}
	return nil
}

// RunEvaluation implementa ports.TxRunner.
func (t *TxRunner) RunEvaluation(_ context.Context, fn func(
	progressRepo repository.ProgressRepository,
	reportRepo repository.ReportRepository,
) error) error {
	snap := t.S.snapshot()
	if err := fn(t.S.Progress(), t.S.Reports()); err != nil {
		t.S.restore(snap)
		return err
	}
	return nil
}

// storeSnapshot copia profunda del estado mutado por los casos de uso.
type storeSnapshot struct {
	assignments map[string]*entity.Assignment
	statuses    map[string]*entity.CompanyTaskStatus
	transitions []*entity.TaskStatusTransition
	subComps    map[string]*entity.SubProjectCompletion
	projProg    map[string]*entity.ProjectProgress
	reports     map[string]*entity.EvaluationReport
	reportOrder []string
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		assignments: make(map[string]*entity.Assignment, len(s.assignments)),
		statuses:    make(map[string]*entity.CompanyTaskStatus, len(s.statuses)),
		transitions: append([]*entity.TaskStatusTransition(nil), s.transitions...),
		subComps:    make(map[string]*entity.SubProjectCompletion, len(s.subComps)),
		projProg:    make(map[string]*entity.ProjectProgress, len(s.projProg)),
		reports:     make(map[string]*entity.EvaluationReport, len(s.reports)),
		reportOrder: append([]string(nil), s.reportOrder...),
	}
	for k, a := range s.assignments {
		cp := *a
		snap.assignments[k] = &cp
	}
	for k, row := range s.statuses {
		snap.statuses[k] = copyStatus(row)
	}
	for k, c := range s.subComps {
		snap.subComps[k] = copySubCompletion(c)
	}
	for k, p := range s.projProg {
		cp := *p
		snap.projProg[k] = &cp
	}
	for k, rep := range s.reports {
		cp := *rep
		snap.reports[k] = &cp
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = snap.assignments
	s.statuses = snap.statuses
	s.transitions = snap.transitions
	s.subComps = snap.subComps
	s.projProg = snap.projProg
	s.reports = snap.reports
	s.reportOrder = snap.reportOrder
}

// NotifierRecorder acumula las notificaciones emitidas, con mutex porque los
// casos de uso las despachan en goroutines.
type NotifierRecorder struct {
	mu        sync.Mutex
	Reviewed  []string // companyID|taskID|decision
	Published []string // companyID|subProjectID|reportID
}

// TaskReviewed implementa ports.Notifier.
func (n *NotifierRecorder) TaskReviewed(_ context.Context, companyID, taskID, decision string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Reviewed = append(n.Reviewed, companyID+"|"+taskID+"|"+decision)
}

// ReportPublished implementa ports.Notifier.
func (n *NotifierRecorder) ReportPublished(_ context.Context, companyID, subProjectID, reportID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Published = append(n.Published, companyID+"|"+subProjectID+"|"+reportID)
}

// ReviewedEvents copia de las notificaciones de revisión emitidas hasta ahora.
func (n *NotifierRecorder) ReviewedEvents() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Reviewed...)
}

// PublishedEvents copia de las notificaciones de publicación emitidas hasta ahora.
func (n *NotifierRecorder) PublishedEvents() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Published...)
}

// ──────────────────────────────────────────────────────────────────────────────

func sortByPosition(items []*entity.WorkItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func copyWorkItem(w *entity.WorkItem) *entity.WorkItem {
	if w == nil {
		return nil
	}
	cp := *w
	return &cp
}

func copyStatus(s *entity.CompanyTaskStatus) *entity.CompanyTaskStatus {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func copySubCompletion(c *entity.SubProjectCompletion) *entity.SubProjectCompletion {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
