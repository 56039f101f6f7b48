package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gemstock-api/internal/model"
	"gemstock-api/internal/repository"
	"gemstock-api/internal/service"
	"gemstock-api/pkg/apierror"
	"gemstock-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// PrintJobHandler handles print-job HTTP requests.
type PrintJobHandler struct {
	printJobs *service.PrintJobService
}

// NewPrintJobHandler creates a new print job handler.
func NewPrintJobHandler(printJobs *service.PrintJobService) *PrintJobHandler {
	return &PrintJobHandler{printJobs: printJobs}
}

// CreateJobRequest is the body of POST /api/v1/print-jobs.
type CreateJobRequest struct {
	InventoryIDs []int64           `json:"inventory_ids"`
	UserID       string            `json:"user_id"`
	Format       model.PrintFormat `json:"format"`
}

// CreateJob handles POST /api/v1/print-jobs
func (h *PrintJobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}
	if req.UserID == "" {
		response.Error(w, apierror.BadRequest("user_id is required"))
		return
	}
	if len(req.InventoryIDs) == 0 {
		response.Error(w, apierror.BadRequest("inventory_ids must not be empty"))
		return
	}

	result, err := h.printJobs.CreateJob(r.Context(), req.InventoryIDs, req.Format, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			response.Error(w, apierror.NotFound(err.Error()))
		case errors.Is(err, service.ErrNoPrintableItems):
			response.Error(w, apierror.BadRequest(err.Error()))
		default:
			response.Error(w, err)
		}
		return
	}

	response.Created(w, result)
}

// ListJobs handles GET /api/v1/print-jobs
// With ?user_id= it lists one user's jobs; without, it lists all jobs and
// triggers orphan reconciliation if the listing hits a deleted owner.
func (h *PrintJobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var (
		jobs []model.PrintJob
		err  error
	)
	if owner := r.URL.Query().Get("user_id"); owner != "" {
		jobs, err = h.printJobs.ListJobsByOwner(r.Context(), owner)
	} else {
		jobs, err = h.printJobs.ListJobs(r.Context())
	}
	if err != nil {
		response.Error(w, err)
		return
	}

	if jobs == nil {
		jobs = []model.PrintJob{}
	}
	response.JSONWithMeta(w, http.StatusOK, jobs, 1, len(jobs), int64(len(jobs)))
}

// Reprint handles GET /api/v1/print-jobs/{job_id}/reprint
func (h *PrintJobHandler) Reprint(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		response.Error(w, apierror.BadRequest("job_id is required"))
		return
	}

	lines, err := h.printJobs.Reprint(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			response.Error(w, apierror.NotFound("print job not found"))
			return
		}
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"job_id": jobID,
		"lines":  lines,
	})
}

// Reconcile handles POST /api/v1/print-jobs/reconcile — an explicit repair
// trigger for operators, running the same pass the listing path runs lazily.
func (h *PrintJobHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.printJobs.ReconcileOrphans(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"deleted_jobs": deleted})
}
