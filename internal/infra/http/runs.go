package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"content-curator/internal/domain"
	"content-curator/internal/infra/metrics"
)

// RunRequest описывает тело запроса на внеочередной прогон.
type RunRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// RunResponse содержит идентификатор поставленной задачи.
type RunResponse struct {
	JobID  string `json:"job_id"`
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

// RunsHandler ставит задачи курирования в очередь.
type RunsHandler struct {
	queue    domain.CurationQueue
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewRunsHandler создаёт обработчик.
func NewRunsHandler(queue domain.CurationQueue, logger zerolog.Logger) *RunsHandler {
	return &RunsHandler{
		queue:    queue,
		validate: validator.New(),
		log:      logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Mount регистрирует маршруты на сервере.
func (h *RunsHandler) Mount(s *Server) {
	s.Router.Post("/api/v1/curation/runs", h.Create)
}

// Create обрабатывает POST /api/v1/curation/runs.
func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			WriteError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	job := domain.CurationJob{
		ID:          h.newID(),
		UserID:      req.UserID,
		RequestedAt: h.now().UTC(),
		Cause:       domain.CurationCauseManual,
	}
	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		h.log.Error().Err(err).Int64("user_id", req.UserID).Msg("api: не удалось поставить задачу")
		WriteError(w, http.StatusInternalServerError, "failed to enqueue run")
		return
	}
	metrics.IncJobEnqueued(string(job.Cause))
	WriteJSON(w, http.StatusAccepted, RunResponse{JobID: job.ID, UserID: job.UserID, Status: "queued"})
}
