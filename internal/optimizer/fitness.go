package optimizer

import (
	"log/slog"
	"math"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/simulator"
)

// 截断排程中每个未完工的工件在目标函数上额外背负的基础惩罚，
// 防止卡死的染色体因为排程变短反而显得更优
const truncationPenalty = 1000.0

// evaluator 把仿真器包装成标量目标函数：
// fitness = (1-w)·makespan + w·totalTardiness，权重 w 由调用方给定。
// 每次评估都完整跑一遍仿真，没有增量计算
type evaluator struct {
	sim    *simulator.Simulator
	jobs   []domain.Job
	weight float64
}

// evaluate 对一条染色体做一次仿真并打分。
// 评估中的意外错误只影响这一个个体：染色体被打上最差适应度，
// 不会中断整代种群的评估
func (e *evaluator) evaluate(chromosome []int64) (fitness, makespan, tardiness float64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("个体评估失败，赋予最差适应度", "panic", r)
			fitness = math.MaxFloat64
			makespan = math.MaxFloat64
			tardiness = math.MaxFloat64
		}
	}()

	schedule := e.sim.Run(e.jobs, chromosome)

	makespan = schedule.Makespan
	tardiness = schedule.TotalTardiness
	fitness = (1-e.weight)*makespan + e.weight*tardiness

	if schedule.Truncated {
		unfinished := len(e.jobs) - schedule.FinishedJobCount()
		fitness += float64(unfinished) * (schedule.Makespan + truncationPenalty)
	}

	return fitness, makespan, tardiness
}
