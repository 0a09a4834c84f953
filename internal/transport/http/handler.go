package httptransport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"agent-dispatch-service/internal/service"
)

type Handler struct {
	jobSvc      *service.JobService
	agentSvc    *service.AgentService
	coordinator *service.Coordinator
	executor    *service.Executor
	reconciler  *service.Reconciler
}

func NewHandler(
	jobSvc *service.JobService,
	agentSvc *service.AgentService,
	coordinator *service.Coordinator,
	executor *service.Executor,
	reconciler *service.Reconciler,
) *Handler {
	return &Handler{
		jobSvc:      jobSvc,
		agentSvc:    agentSvc,
		coordinator: coordinator,
		executor:    executor,
		reconciler:  reconciler,
	}
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// CreateJob godoc
// @Summary Submit a new job
// @Description Stores the job as Open and enqueues it for matching on its priority lane.
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body service.CreateJobRequest true "job payload"
// @Success 201 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 500 {object} apiError
// @Router /jobs [post]
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req service.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	job, err := h.jobSvc.CreateJob(r.Context(), req)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// ListJobs godoc
// @Summary List jobs, newest first
// @Tags jobs
// @Produce json
// @Success 200 {array} entity.Job
// @Failure 500 {object} apiError
// @Router /jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobSvc.ListJobs(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GetJob godoc
// @Summary Get job by id
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}

	job, err := h.jobSvc.GetJob(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// CancelJob godoc
// @Summary Cancel a job
// @Description Moves the job to Cancelled when its current status allows it.
// @Tags jobs
// @Produce json
// @Param id path string true "job id (uuid)"
// @Success 200 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /jobs/{id}/cancel [post]
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}

	job, err := h.jobSvc.CancelJob(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// DeleteJob godoc
// @Summary Delete a job and its distribution records
// @Tags jobs
// @Param id path string true "job id (uuid)"
// @Success 204
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /jobs/{id} [delete]
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.jobSvc.DeleteJob(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateAgent godoc
// @Summary Register an agent
// @Tags agents
// @Accept json
// @Produce json
// @Param request body service.CreateAgentRequest true "agent payload"
// @Success 201 {object} entity.Agent
// @Failure 400 {object} apiError
// @Failure 500 {object} apiError
// @Router /agents [post]
func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	agent, err := h.agentSvc.CreateAgent(r.Context(), req)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, agent)
}

// ListAgents godoc
// @Summary List agents
// @Tags agents
// @Produce json
// @Success 200 {array} entity.Agent
// @Failure 500 {object} apiError
// @Router /agents [get]
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agentSvc.ListAgents(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

// GetAgent godoc
// @Summary Get agent by id
// @Tags agents
// @Produce json
// @Param id path string true "agent id (uuid)"
// @Success 200 {object} entity.Agent
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /agents/{id} [get]
func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}

	agent, err := h.agentSvc.GetAgent(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// DeleteAgent godoc
// @Summary Delete an agent
// @Tags agents
// @Param id path string true "agent id (uuid)"
// @Success 204
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /agents/{id} [delete]
func (h *Handler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.agentSvc.DeleteAgent(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// QueueStatus godoc
// @Summary Queue status
// @Description Counts jobs awaiting matching and assignments awaiting execution.
// @Tags queue
// @Produce json
// @Success 200 {object} service.QueueStatus
// @Failure 500 {object} apiError
// @Router /queue/status [get]
func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.coordinator.Status(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// TriggerQueue godoc
// @Summary Run one matching pass now
// @Description Synchronously matches up to the batch cap of pending jobs instead of waiting for the next scan tick.
// @Tags queue
// @Produce json
// @Success 200 {object} service.PassStats
// @Failure 500 {object} apiError
// @Router /queue/trigger [post]
func (h *Handler) TriggerQueue(w http.ResponseWriter, r *http.Request) {
	stats, err := h.coordinator.ManualTrigger(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// MatchJob godoc
// @Summary Match (or retry) a job
// @Description Runs matching for the job. A Failed job is reset first: its distribution records are deleted and it reopens.
// @Tags queue
// @Produce json
// @Param jobID path string true "job id (uuid)"
// @Success 200 {object} service.MatchResult
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 422 {object} apiError
// @Router /queue/match/{jobID} [post]
func (h *Handler) MatchJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid job id")
		return
	}

	result, err := h.coordinator.RetryJob(r.Context(), jobID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if result == nil {
		// Job was not matchable (already past Open); report its current state.
		job, err := h.jobSvc.GetJob(r.Context(), jobID)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"job": job, "matched": false})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetMatchDetails godoc
// @Summary Match details for a job
// @Description Returns the assigned agents in rank order with their stored execution outcomes.
// @Tags queue
// @Produce json
// @Param jobID path string true "job id (uuid)"
// @Success 200 {object} service.MatchDetails
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /queue/match/{jobID} [get]
func (h *Handler) GetMatchDetails(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid job id")
		return
	}

	details, err := h.executor.GetMatchDetails(r.Context(), jobID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// ExecuteJob godoc
// @Summary Dispatch a job to its top-ranked agent
// @Tags queue
// @Produce json
// @Param jobID path string true "job id (uuid)"
// @Success 200 {object} service.DispatchResult
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /queue/execute/{jobID} [post]
func (h *Handler) ExecuteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid job id")
		return
	}

	result, err := h.executor.TriggerExecution(r.Context(), jobID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExecuteJobAgent godoc
// @Summary Dispatch a job to one assigned agent
// @Description Invokes the given agent for the job. An optional body overrides the invocation message and context.
// @Tags queue
// @Accept json
// @Produce json
// @Param jobID path string true "job id (uuid)"
// @Param agentID path string true "agent id (uuid)"
// @Param request body service.DispatchOverride false "invocation override"
// @Success 200 {object} service.DispatchResult
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /queue/execute/{jobID}/agents/{agentID} [post]
func (h *Handler) ExecuteJobAgent(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid job id")
		return
	}
	agentID, err := pathID(r, "agentID")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	var override *service.DispatchOverride
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "cannot read body")
		return
	}
	if len(body) > 0 {
		var o service.DispatchOverride
		if err := json.Unmarshal(body, &o); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		override = &o
	}

	result, err := h.executor.Dispatch(r.Context(), jobID, agentID, override)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CompleteJob godoc
// @Summary Complete a job with the given agent as winner
// @Description Marks the job Completed, credits the winning agent, and fires settlement. Requires an In Progress job with a completed outcome from that agent.
// @Tags queue
// @Produce json
// @Param jobID path string true "job id (uuid)"
// @Param agentID path string true "agent id (uuid)"
// @Success 200 {object} service.ReconcileResult
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /queue/complete/{jobID}/agents/{agentID} [post]
func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid job id")
		return
	}
	agentID, err := pathID(r, "agentID")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	result, err := h.reconciler.Complete(r.Context(), jobID, agentID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetExecutionResult godoc
// @Summary Execution result for a job
// @Tags queue
// @Produce json
// @Param jobID path string true "job id (uuid)"
// @Success 200 {object} service.ExecutionReport
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /queue/result/{jobID} [get]
func (h *Handler) GetExecutionResult(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobID")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid job id")
		return
	}

	report, err := h.executor.GetExecutionResult(r.Context(), jobID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
