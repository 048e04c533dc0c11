package taskform

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/phrazzld/taskdesk/internal/client"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/entitystore"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
)

// ListPath is the list view the form returns to.
const ListPath = "/task"

// Translation keys used by the screen.
const (
	KeyHeading     = "taskdeskApp.task.home.createOrEditLabel"
	KeyLoading     = "taskdeskApp.task.home.loading"
	KeyTitle       = "taskdeskApp.task.title"
	KeyDescription = "taskdeskApp.task.description"
	KeyID          = "global.field.id"
	KeyBack        = "entity.action.back"
	KeySave        = "entity.action.save"
)

// TaskStore is the task entity store the form drives.
type TaskStore interface {
	State() entitystore.State[domain.Task]
	Subscribe(fn entitystore.Listener[domain.Task]) func()
	GetEntity(ctx context.Context, id int64) error
	CreateEntity(ctx context.Context, task domain.Task) error
	UpdateEntity(ctx context.Context, task domain.Task) error
	Reset()
}

// JobStore supplies the Job reference list.
type JobStore interface {
	State() entitystore.State[domain.Job]
	GetEntities(ctx context.Context, q client.Query) error
}

// Navigator changes the current route.
type Navigator interface {
	Navigate(path string)
}

// Translator looks up display strings.
type Translator interface {
	Translate(key string) string
}

// Phase is the form's lifecycle state.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseEmpty
	PhaseLoaded
	PhaseSubmitting
	PhaseNavigated
)

var phaseNames = map[Phase]string{
	PhaseInitializing: "initializing",
	PhaseEmpty:        "empty",
	PhaseLoaded:       "loaded",
	PhaseSubmitting:   "submitting",
	PhaseNavigated:    "navigated",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// Values are the editable fields. A nil field was not submitted and keeps
// the loaded record's value.
type Values struct {
	Title       *string
	Description *string
}

// applyTo shallow-merges v over t.
func (v Values) applyTo(t domain.Task) domain.Task {
	if v.Title != nil {
		t.Title = *v.Title
	}
	if v.Description != nil {
		t.Description = *v.Description
	}
	return t
}

// Form is one create/edit session. It is safe for concurrent use.
type Form struct {
	id    int64
	tasks TaskStore
	jobs  JobStore
	nav   Navigator
	tr    Translator
	log   *slog.Logger

	mu          sync.Mutex
	phase       Phase
	settled     Phase
	edited      *Values
	unsubscribe func()
	navigate    sync.Once
}

// New creates a session. id is zero for a new record.
func New(id int64, tasks TaskStore, jobs JobStore, nav Navigator, tr Translator, log *slog.Logger) *Form {
	if tasks == nil || jobs == nil || nav == nil || tr == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskform: tasks, jobs, nav and tr are required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Form{
		id:    id,
		tasks: tasks,
		jobs:  jobs,
		nav:   nav,
		tr:    tr,
		log:   log.With(slog.String("component", "task_form")),
		phase: PhaseInitializing,
	}
}

// IsNew reports whether the session creates a record.
func (f *Form) IsNew() bool {
	return f.id == 0
}

// Phase returns the current lifecycle state.
func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Form) setPhase(p Phase) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseNavigated {
		f.phase = p
	}
}

// Init subscribes to the task store and issues the initial fetches. The
// returned error is the first failed fetch; the form stays usable either
// way and the failure is visible only in the stores' state.
func (f *Form) Init(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, f.log)

	f.mu.Lock()
	if f.unsubscribe == nil {
		f.unsubscribe = f.tasks.Subscribe(f.onTaskState)
	}
	f.mu.Unlock()

	var firstErr error
	settled := PhaseEmpty
	if f.IsNew() {
		f.tasks.Reset()
	} else {
		settled = PhaseLoaded
		if err := f.tasks.GetEntity(ctx, f.id); err != nil {
			log.Warn("failed to load task", slog.Int64("task_id", f.id), slog.String("error", err.Error()))
			firstErr = err
		}
	}

	if err := f.jobs.GetEntities(ctx, client.Query{}); err != nil {
		log.Warn("failed to load jobs", slog.String("error", err.Error()))
		if firstErr == nil {
			firstErr = err
		}
	}

	f.mu.Lock()
	f.settled = settled
	f.mu.Unlock()
	f.setPhase(settled)
	return firstErr
}

func (f *Form) onTaskState(st entitystore.State[domain.Task]) {
	if !st.UpdateSuccess {
		return
	}
	f.navigate.Do(func() {
		f.setPhase(PhaseNavigated)
		f.nav.Navigate(ListPath)
	})
}

// DefaultValues returns the values the form is pre-populated with: empty
// for a new record, the loaded record's fields otherwise.
func (f *Form) DefaultValues() Values {
	if f.IsNew() {
		return Values{}
	}
	t := f.tasks.State().Entity
	return Values{Title: &t.Title, Description: &t.Description}
}

// Edit records values typed into the form without submitting them.
func (f *Form) Edit(v Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = &v
}

// Submit merges v over the loaded record and dispatches create or update.
// On failure the form returns to its loaded or empty phase.
func (f *Form) Submit(ctx context.Context, v Values) error {
	f.Edit(v)
	f.setPhase(PhaseSubmitting)

	var entity domain.Task
	if !f.IsNew() {
		entity = f.tasks.State().Entity
	}
	entity = v.applyTo(entity)

	var err error
	if f.IsNew() {
		err = f.tasks.CreateEntity(ctx, entity)
	} else {
		err = f.tasks.UpdateEntity(ctx, entity)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, f.log).Debug("task save failed", slog.String("error", err.Error()))
		f.mu.Lock()
		settled := f.settled
		f.mu.Unlock()
		f.setPhase(settled)
		return err
	}
	return nil
}

// Jobs returns the loaded Job reference list.
func (f *Form) Jobs() []domain.Job {
	return f.jobs.State().Entities
}

// Close ends the session's store subscription.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
}

// Field is one rendered input.
type Field struct {
	Name     string
	ID       string
	Label    string
	Type     string
	Value    string
	Required bool
	ReadOnly bool
	Error    string
}

// View is everything the screen renders.
type View struct {
	Heading      string
	Loading      bool
	LoadingText  string
	IsNew        bool
	Fields       []Field
	BackLabel    string
	BackHref     string
	SaveLabel    string
	SaveDisabled bool
}

// View renders the current state. Edited values take precedence over the
// defaults. No error message is included for a failed save.
func (f *Form) View() View {
	st := f.tasks.State()

	f.mu.Lock()
	values := f.edited
	f.mu.Unlock()
	if values == nil {
		d := f.DefaultValues()
		values = &d
	}

	v := View{
		Heading:      f.tr.Translate(KeyHeading),
		Loading:      st.Loading,
		LoadingText:  f.tr.Translate(KeyLoading),
		IsNew:        f.IsNew(),
		BackLabel:    f.tr.Translate(KeyBack),
		BackHref:     ListPath,
		SaveLabel:    f.tr.Translate(KeySave),
		SaveDisabled: st.Updating,
	}
	if v.Loading {
		return v
	}

	if !v.IsNew {
		id := ""
		if st.Entity.ID != 0 {
			id = strconv.FormatInt(st.Entity.ID, 10)
		}
		v.Fields = append(v.Fields, Field{
			Name:     "id",
			ID:       "task-id",
			Label:    f.tr.Translate(KeyID),
			Type:     "text",
			Value:    id,
			Required: true,
			ReadOnly: true,
		})
	}
	v.Fields = append(v.Fields,
		Field{Name: "title", ID: "task-title", Label: f.tr.Translate(KeyTitle), Type: "text", Value: deref(values.Title)},
		Field{Name: "description", ID: "task-description", Label: f.tr.Translate(KeyDescription), Type: "text", Value: deref(values.Description)},
	)
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
