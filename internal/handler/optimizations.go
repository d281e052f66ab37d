package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/optimizer"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/utils"
)

func (h *Handler) StartOptimization(w http.ResponseWriter, r *http.Request) {
	jobSet := r.Context().Value(JobSetCtx).(*domain.JobSet)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		PopulationSize  int     `json:"populationSize" validate:"required,min=20,max=500"`
		Generations     int     `json:"generations" validate:"required,min=50,max=2000"`
		TournamentSize  int     `json:"tournamentSize" validate:"required,min=2,max=7"`
		CrossoverRate   float64 `json:"crossoverRate" validate:"required,gt=0,lte=1"`
		MutationRate    float64 `json:"mutationRate" validate:"required,gt=0,lte=1"`
		MutationMethod  string  `json:"mutationMethod" validate:"required,oneof=swap insert"`
		ElitismRate     float64 `json:"elitismRate" validate:"required,gte=0.05,lte=0.3"`
		TardinessWeight float64 `json:"tardinessWeight" validate:"gte=0,lte=1"`
		UseAdaptive     bool    `json:"useAdaptive"`
		AdaptiveWindow  int     `json:"adaptiveWindow" validate:"omitempty,min=5,max=50"`
		InitialSequence []int64 `json:"initialSequence"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	params := &optimizer.Parameters{
		PopulationSize:  req.PopulationSize,
		Generations:     req.Generations,
		TournamentSize:  req.TournamentSize,
		CrossoverRate:   req.CrossoverRate,
		MutationRate:    req.MutationRate,
		MutationMethod:  domain.MutationMethod(req.MutationMethod),
		ElitismRate:     req.ElitismRate,
		TardinessWeight: req.TardinessWeight,
		UseAdaptive:     req.UseAdaptive,
		AdaptiveWindow:  req.AdaptiveWindow,
	}
	if params.UseAdaptive && params.AdaptiveWindow == 0 {
		params.AdaptiveWindow = optimizer.DefaultParameters().AdaptiveWindow
	}

	// 初始投料顺序为空时按工件编号顺序投料
	initialSequence := req.InitialSequence
	if len(initialSequence) == 0 {
		initialSequence = make([]int64, 0, len(jobSet.Jobs))
		for _, job := range jobSet.Jobs {
			initialSequence = append(initialSequence, job.ID)
		}
	} else if err := utils.ValidateSequence(jobSet.Jobs, initialSequence); err != nil {
		h.badRequest(w, r, err)
		return
	}

	paramsData, err := json.Marshal(params)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 先持久化运行记录，拿到 ID 之后才能启动后台优化
	run := &domain.OptimizationRun{
		JobSetID:        jobSet.ID,
		Status:          domain.RunStatusRunning,
		Parameters:      paramsData,
		InitialSequence: initialSequence,
	}

	if err := h.repository.CreateOptimizationRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.runner.Start(run, jobSet, params, initialSequence, myInfo); err != nil {
		// 启动失败时把这条记录结束掉，避免留下永远 running 的运行
		if finishErr := h.repository.FinishOptimizationRun(run.ID, domain.RunStatusFailed, nil, err.Error()); finishErr != nil {
			h.internalServerError(w, r, finishErr)
			return
		}
		h.badRequest(w, r, err)
		return
	}

	h.successResponse(w, r, "优化已启动", run)
}

func (h *Handler) GetOptimization(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)
	h.successResponse(w, r, "获取优化运行成功", run)
}

func (h *Handler) GetOptimizationProgress(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)

	snapshot, err := h.runner.GetProgressSnapshot(run.ID)
	if err != nil {
		switch {
		case errors.Is(err, redis.Nil):
			// 快照可能还没写入或者已经过期，此时以数据库中的状态为准
			h.successResponse(w, r, "暂无进度信息", run)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取优化进度成功", snapshot)
}

func (h *Handler) CancelOptimization(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(OptimizationRunCtx).(*domain.OptimizationRun)

	if run.Status != domain.RunStatusRunning {
		h.errorResponse(w, r, "优化运行已结束")
		return
	}

	if !h.runner.Cancel(run.ID) {
		// 数据库中仍是 running 但内存里已经没有令牌，
		// 说明进程重启过或者终态即将落库，让客户端稍后再查
		h.errorResponse(w, r, "优化运行不在进行中")
		return
	}

	h.successResponse(w, r, "取消请求已提交", nil)
}

func (h *Handler) GetJobSetOptimizations(w http.ResponseWriter, r *http.Request) {
	jobSet := r.Context().Value(JobSetCtx).(*domain.JobSet)

	runs, err := h.repository.GetOptimizationRunsByJobSetID(jobSet.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取优化运行列表成功", runs)
}
