package optimizer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/simulator"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/utils"
)

// ErrCancelled 表示运行被协作式取消，不是失败
var ErrCancelled = errors.New("优化已被取消")

// Optimizer 用遗传算法在工件排列空间中搜索，
// 最小化 makespan 和总延期的加权目标
type Optimizer struct {
	params  *Parameters
	jobs    []domain.Job
	initial []int64 // 用户当前的手工顺序，作为种子个体；可以为 nil
	eval    *evaluator
	rng     *rand.Rand

	// 每代并行评估后代时的 goroutine 数量，默认为 CPU 核心数
	Workers int
}

func New(params *Parameters, jobs []domain.Job, initialSequence []int64, sim *simulator.Simulator, rng *rand.Rand) (*Optimizer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateJobs(jobs); err != nil {
		return nil, err
	}
	if initialSequence != nil {
		if err := utils.ValidateSequence(jobs, initialSequence); err != nil {
			return nil, err
		}
	}
	if rng == nil {
		return nil, fmt.Errorf("随机数生成器不能为空")
	}

	return &Optimizer{
		params:  params,
		jobs:    jobs,
		initial: initialSequence,
		eval: &evaluator{
			sim:    sim,
			jobs:   jobs,
			weight: params.TardinessWeight,
		},
		rng:     rng,
		Workers: runtime.NumCPU(),
	}, nil
}

// Optimize 执行完整的优化运行。onProgress 每代被调用一次；
// token 被取消时运行在下一代开始前终止并返回 ErrCancelled，不产生结果
func (o *Optimizer) Optimize(token *Token, onProgress func(*domain.OptimizationProgress)) (*domain.GAResult, error) {
	start := time.Now()
	p := o.params

	// 生成初始种群：第一个个体用用户的手工顺序（如果有），其余随机
	ids := make([]int64, len(o.jobs))
	for i, job := range o.jobs {
		ids[i] = job.ID
	}

	pop := make([]*individual, p.PopulationSize)
	for i := range pop {
		var chromosome []int64
		if i == 0 && o.initial != nil {
			chromosome = make([]int64, len(o.initial))
			copy(chromosome, o.initial)
		} else {
			chromosome = randomPermutation(ids, o.rng)
		}
		pop[i] = &individual{chromosome: chromosome}
	}
	o.evaluateAll(pop)

	// 历代最优个体，只在严格变好时更新
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.fitness < best.fitness {
			best = ind
		}
	}
	best = best.clone()
	initialBest := best.fitness

	history := make([]float64, 0, p.Generations)
	generationsRun := 0

	for gen := 0; gen < p.Generations; gen++ {
		if token.Cancelled() {
			return nil, ErrCancelled
		}

		sort.Slice(pop, func(i, j int) bool {
			return pop[i].fitness < pop[j].fitness
		})

		if pop[0].fitness < best.fitness {
			best = pop[0].clone()
		}

		mutationRate := p.MutationRate
		if p.UseAdaptive {
			mutationRate = adaptMutationRate(p.MutationRate, pop, history, p.AdaptiveWindow, gen, p.Generations)
		}

		// 精英直接进入下一代
		eliteCount := int(math.Ceil(float64(p.PopulationSize) * p.ElitismRate))
		if eliteCount < 1 {
			eliteCount = 1
		}
		next := make([]*individual, 0, p.PopulationSize)
		for i := 0; i < eliteCount && i < p.PopulationSize; i++ {
			next = append(next, pop[i].clone())
		}

		// 其余名额由锦标赛选择 + 交叉 + 变异产生
		offspring := make([]*individual, 0, p.PopulationSize-len(next))
		for len(next)+len(offspring) < p.PopulationSize {
			parent1 := tournamentSelect(pop, p.TournamentSize, o.rng)
			parent2 := tournamentSelect(pop, p.TournamentSize, o.rng)

			var chromosome []int64
			if o.rng.Float64() < p.CrossoverRate {
				chromosome = orderCrossover(parent1.chromosome, parent2.chromosome, o.rng)
			} else {
				chromosome = make([]int64, len(parent1.chromosome))
				copy(chromosome, parent1.chromosome)
			}

			if o.rng.Float64() < mutationRate {
				switch p.MutationMethod {
				case domain.MutationInsert:
					mutateInsert(chromosome, o.rng)
				default:
					mutateSwap(chromosome, o.rng)
				}
			}

			offspring = append(offspring, &individual{chromosome: chromosome})
		}

		o.evaluateAll(offspring)
		pop = append(next, offspring...)

		for _, ind := range offspring {
			if ind.fitness < best.fitness {
				best = ind.clone()
			}
		}

		generationsRun = gen + 1
		history = append(history, best.fitness)
		if onProgress != nil {
			onProgress(&domain.OptimizationProgress{
				Generation:    generationsRun,
				BestFitness:   best.fitness,
				BestMakespan:  best.makespan,
				BestTardiness: best.tardiness,
				BestSequence:  append([]int64(nil), best.chromosome...),
			})
		}
	}

	improvement := 0.0
	if initialBest != 0 {
		improvement = (initialBest - best.fitness) / initialBest * 100
	}

	return &domain.GAResult{
		BestSequence:       best.chromosome,
		Makespan:           best.makespan,
		TotalTardiness:     best.tardiness,
		ImprovementPercent: improvement,
		GenerationsRun:     generationsRun,
		ExecutionTimeMs:    time.Since(start).Milliseconds(),
		FitnessHistory:     history,
	}, nil
}

// evaluateAll 并行评估一批个体。每个个体的评估是纯函数
// （仿真器每次调用构造自己的状态），所以只需要一个 WaitGroup，
// 不需要任何锁；取消仍然只在代与代之间检查
func (o *Optimizer) evaluateAll(pop []*individual) {
	workers := o.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(pop) {
		workers = len(pop)
	}

	if workers == 1 {
		for _, ind := range pop {
			ind.fitness, ind.makespan, ind.tardiness = o.eval.evaluate(ind.chromosome)
		}
		return
	}

	var wg sync.WaitGroup
	tasks := make(chan *individual)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ind := range tasks {
				ind.fitness, ind.makespan, ind.tardiness = o.eval.evaluate(ind.chromosome)
			}
		}()
	}

	for _, ind := range pop {
		tasks <- ind
	}
	close(tasks)
	wg.Wait()
}
