package handler

import (
	"net/http"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/simulator"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/utils"
)

func (h *Handler) CreateJobSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string       `json:"name" validate:"required,max=64"`
		Description string       `json:"description" validate:"max=255"`
		Jobs        []domain.Job `json:"jobs" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 校验工件数据本身，比如编号唯一、工时为正
	if err := utils.ValidateJobs(req.Jobs); err != nil {
		h.badRequest(w, r, err)
		return
	}

	jobSet := &domain.JobSet{
		Name:        req.Name,
		Description: req.Description,
		Jobs:        req.Jobs,
	}

	if err := h.repository.CreateJobSet(jobSet); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "工件集创建成功", jobSet)
}

func (h *Handler) GetAllJobSets(w http.ResponseWriter, r *http.Request) {
	jobSets, err := h.repository.GetAllJobSets()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有工件集成功", jobSets)
}

func (h *Handler) GetJobSet(w http.ResponseWriter, r *http.Request) {
	jobSet := r.Context().Value(JobSetCtx).(*domain.JobSet)
	h.successResponse(w, r, "获取工件集成功", jobSet)
}

func (h *Handler) DeleteJobSet(w http.ResponseWriter, r *http.Request) {
	jobSet := r.Context().Value(JobSetCtx).(*domain.JobSet)

	if err := h.repository.DeleteJobSet(jobSet.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除工件集成功", nil)
}

func (h *Handler) SimulateJobSet(w http.ResponseWriter, r *http.Request) {
	jobSet := r.Context().Value(JobSetCtx).(*domain.JobSet)

	var req struct {
		// 为空时按工件编号顺序投料
		Sequence []int64 `json:"sequence"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sequence := req.Sequence
	if len(sequence) == 0 {
		sequence = make([]int64, 0, len(jobSet.Jobs))
		for _, job := range jobSet.Jobs {
			sequence = append(sequence, job.ID)
		}
	} else if err := utils.ValidateSequence(jobSet.Jobs, sequence); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sim := simulator.New(simulator.OptionsFromConfig(h.config))
	schedule := sim.Run(jobSet.Jobs, sequence)

	h.successResponse(w, r, "仿真完成", schedule)
}
