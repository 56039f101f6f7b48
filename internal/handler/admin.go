package handler

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"gemstock-api/internal/model"
	"gemstock-api/internal/repository"
	"gemstock-api/pkg/apierror"
	"gemstock-api/pkg/response"
	"gemstock-api/pkg/uid"
)

// AdminHandler handles operator-facing HTTP requests: store statistics and
// user registration for single-store deployments.
type AdminHandler struct {
	printJobs repository.PrintJobRepository
	users     repository.UserDirectory
	dbType    string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(printJobs repository.PrintJobRepository, users repository.UserDirectory, dbType string) *AdminHandler {
	return &AdminHandler{
		printJobs: printJobs,
		users:     users,
		dbType:    dbType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
		"num_gc":     memStats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}

	if h.printJobs != nil {
		storeStats, err := h.printJobs.GetStats(ctx)
		if err != nil {
			stats["print_store"] = map[string]interface{}{"status": "error", "error": err.Error()}
		} else {
			stats["print_store"] = storeStats
		}
	}

	response.OK(w, stats)
}

// CreateUserRequest is the body of POST /api/v1/admin/users.
type CreateUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateUser handles POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		response.Error(w, apierror.ServiceUnavailable("user directory not configured"))
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}
	if req.ID == "" {
		req.ID = uid.New()
	}

	user := &model.User{ID: req.ID, Name: req.Name, Active: true}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, user)
}
