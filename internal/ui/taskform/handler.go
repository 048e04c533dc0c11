package taskform

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskdesk/internal/client"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/entitystore"
	"github.com/phrazzld/taskdesk/internal/i18n"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the task list and the create/edit screen.
type Handler struct {
	taskResource entitystore.Resource[domain.Task]
	jobResource  entitystore.Resource[domain.Job]
	bundle       *i18n.Bundle
	validator    *validator.Validate
	formTmpl     *template.Template
	listTmpl     *template.Template
	logger       *slog.Logger
}

// NewHandler creates a Handler. Each request builds fresh entity stores
// over the given resources.
func NewHandler(
	tasks entitystore.Resource[domain.Task],
	jobs entitystore.Resource[domain.Job],
	bundle *i18n.Bundle,
	log *slog.Logger,
) (*Handler, error) {
	if tasks == nil || jobs == nil || bundle == nil {
		return nil, fmt.Errorf("taskform: tasks, jobs and bundle are required")
	}
	if log == nil {
		log = slog.Default()
	}

	formTmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/form.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse form template: %w", err)
	}
	listTmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/list.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse list template: %w", err)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	})
	if err := bundle.RegisterValidation(v); err != nil {
		return nil, err
	}

	return &Handler{
		taskResource: tasks,
		jobResource:  jobs,
		bundle:       bundle,
		validator:    v,
		formTmpl:     formTmpl,
		listTmpl:     listTmpl,
		logger:       log.With(slog.String("component", "task_form_handler")),
	}, nil
}

// RegisterRoutes mounts the screen on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get(ListPath, h.List)
	r.Get(ListPath+"/new", h.ShowForm)
	r.Post(ListPath+"/new", h.SubmitForm)
	r.Get(ListPath+"/{id}/edit", h.ShowForm)
	r.Post(ListPath+"/{id}/edit", h.SubmitForm)
}

// createInput is the posted form for a new record.
type createInput struct {
	Title       string `form:"title"       validate:"max=255"`
	Description string `form:"description" validate:"max=255"`
}

// editInput adds the read-only identifier the edit screen posts back.
type editInput struct {
	ID string `form:"id" validate:"required,number"`
	createInput
}

// redirectNavigator turns a navigation into a 303 once the session ends.
type redirectNavigator struct {
	path string
}

func (n *redirectNavigator) Navigate(path string) {
	n.path = path
}

type formPage struct {
	Lang   string
	Title  string
	Action string
	Form   View
	Errors map[string]string
}

type listPage struct {
	Lang             string
	Title            string
	CreateLabel      string
	IDLabel          string
	TitleLabel       string
	DescriptionLabel string
	EditLabel        string
	NotFound         string
	Tasks            []domain.Task
	Total            int64
}

func (h *Handler) newForm(r *http.Request, loc *i18n.Localizer, nav Navigator) (*Form, bool) {
	var id int64
	if raw := chi.URLParam(r, "id"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, false
		}
		id = n
	}
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	tasks := entitystore.New[domain.Task]("task", h.taskResource, log)
	jobs := entitystore.New[domain.Job]("job", h.jobResource, log)
	return New(id, tasks, jobs, nav, loc, log), true
}

// ShowForm handles GET /task/new and GET /task/{id}/edit.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	loc := h.bundle.FromRequest(r)
	form, ok := h.newForm(r, loc, &redirectNavigator{})
	if !ok {
		http.NotFound(w, r)
		return
	}
	defer form.Close()

	_ = form.Init(r.Context())
	h.renderForm(w, r, loc, form, nil, http.StatusOK)
}

// SubmitForm handles POST /task/new and POST /task/{id}/edit. A successful
// save redirects to the list; anything else re-renders with status 422.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	loc := h.bundle.FromRequest(r)
	nav := &redirectNavigator{}
	form, ok := h.newForm(r, loc, nav)
	if !ok {
		http.NotFound(w, r)
		return
	}
	defer form.Close()

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	values := valuesFromForm(r)

	_ = form.Init(r.Context())

	var input interface{} = createInput{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
	}
	if !form.IsNew() {
		input = editInput{ID: r.PostForm.Get("id"), createInput: input.(createInput)}
	}
	if err := h.validator.Struct(input); err != nil {
		form.Edit(values)
		h.renderForm(w, r, loc, form, loc.FieldErrors(err), http.StatusUnprocessableEntity)
		return
	}

	if err := form.Submit(r.Context(), values); err != nil {
		log.Info("task form save failed", slog.String("error", err.Error()))
	}
	if nav.path != "" {
		target := nav.path
		if lang := r.URL.Query().Get("lang"); lang != "" {
			target += "?lang=" + url.QueryEscape(lang)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	h.renderForm(w, r, loc, form, nil, http.StatusUnprocessableEntity)
}

func valuesFromForm(r *http.Request) Values {
	var v Values
	if vals, ok := r.PostForm["title"]; ok && len(vals) > 0 {
		v.Title = &vals[0]
	}
	if vals, ok := r.PostForm["description"]; ok && len(vals) > 0 {
		v.Description = &vals[0]
	}
	return v
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, loc *i18n.Localizer, form *Form, errs map[string]string, status int) {
	view := form.View()
	page := formPage{
		Lang:   loc.Lang(),
		Title:  view.Heading,
		Action: r.URL.RequestURI(),
		Form:   view,
		Errors: errs,
	}
	h.render(w, r, h.formTmpl, page, status)
}

// List handles GET /task.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	loc := h.bundle.FromRequest(r)
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	tasks := entitystore.New[domain.Task]("task", h.taskResource, log)
	if err := tasks.GetEntities(r.Context(), client.Query{}); err != nil {
		log.Warn("failed to load tasks", slog.String("error", err.Error()))
	}
	st := tasks.State()

	page := listPage{
		Lang:             loc.Lang(),
		Title:            loc.Translate("taskdeskApp.task.home.title"),
		CreateLabel:      loc.Translate("taskdeskApp.task.home.createLabel"),
		IDLabel:          loc.Translate(KeyID),
		TitleLabel:       loc.Translate(KeyTitle),
		DescriptionLabel: loc.Translate(KeyDescription),
		EditLabel:        loc.Translate("entity.action.edit"),
		NotFound:         loc.Translate("taskdeskApp.task.home.notFound"),
		Tasks:            st.Entities,
		Total:            st.TotalItems,
	}
	h.render(w, r, h.listTmpl, page, http.StatusOK)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data interface{}, status int) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to render template",
			slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
