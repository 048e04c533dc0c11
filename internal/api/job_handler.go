package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/platform/logger"
	"github.com/phrazzld/taskdesk/internal/service"
)

// JobHandler handles /api/jobs requests
type JobHandler struct {
	jobService service.JobService
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService service.JobService, logger *slog.Logger) *JobHandler {
	if jobService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jobService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandler{
		jobService: jobService,
		validator:  newValidator(),
		logger:     logger.With(slog.String("component", "job_handler")),
	}
}

func (h *JobHandler) decodeJob(w http.ResponseWriter, r *http.Request) (JobRequest, bool) {
	var req JobRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		HandleAPIError(w, r, err, "")
		return req, false
	}
	return req, true
}

// CreateJob handles POST /api/jobs requests
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeJob(w, r)
	if !ok {
		return
	}

	job, err := h.jobService.Save(r.Context(), req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create job")
		return
	}

	shared.RespondCreated(w, r, "job", job.ID, job)
}

// UpdateJob handles PUT /api/jobs/{id} requests
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	req, ok := h.decodeJob(w, r)
	if !ok {
		return
	}

	job, err := h.jobService.Update(r.Context(), id, req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update job")
		return
	}
	shared.RespondUpdated(w, r, "job", id, job)
}

// PartialUpdateJob handles PATCH /api/jobs/{id} requests
func (h *JobHandler) PartialUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var patch domain.JobPatch
	if err := shared.DecodeJSON(r, &patch); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	job, err := h.jobService.PartialUpdate(r.Context(), id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update job")
		return
	}
	shared.RespondUpdated(w, r, "job", id, job)
}

// GetAllJobs handles GET /api/jobs requests.
// Supports page, size, sort and eagerload query parameters.
func (h *JobHandler) GetAllJobs(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	eager, _ := strconv.ParseBool(r.URL.Query().Get("eagerload"))

	jobs, err := h.jobService.FindAll(r.Context(), page, eager)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list jobs")
		return
	}
	total, err := h.jobService.CountAll(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list jobs")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("listing jobs",
		slog.Int("page", page.Page),
		slog.Int("size", page.Size),
		slog.Bool("eager", eager))

	writePaginationHeaders(w, r, page, total)
	shared.RespondWithJSON(w, r, http.StatusOK, jobs)
}

// GetJob handles GET /api/jobs/{id} requests
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	job, err := h.jobService.FindOne(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get job")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, job)
}

// DeleteJob handles DELETE /api/jobs/{id} requests
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.jobService.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete job")
		return
	}
	shared.RespondDeleted(w, "job", id)
}

// SearchJobs handles GET /api/_search/jobs?query= requests, paginated like GetAllJobs.
func (h *JobHandler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	jobs, total, err := h.jobService.Search(r.Context(), r.URL.Query().Get("query"), page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search jobs")
		return
	}
	writePaginationHeaders(w, r, page, total)
	shared.RespondWithJSON(w, r, http.StatusOK, jobs)
}
