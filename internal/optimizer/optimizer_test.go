package optimizer

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/simulator"
)

func testJobs() []domain.Job {
	return []domain.Job{
		{ID: 1, DueDate: 200, Family: 1, Stage1Time: 45, Stage2Time: 30},
		{ID: 2, DueDate: 260, Family: 1, Stage1Time: 50, Stage2Time: 35},
		{ID: 3, DueDate: 150, Family: 2, Stage1Time: 40, Stage2Time: 45},
		{ID: 4, DueDate: 400, Family: 2, Stage1Time: 55, Stage2Time: 25},
		{ID: 5, DueDate: 320, Family: 3, Stage1Time: 35, Stage2Time: 40},
		{ID: 6, DueDate: 500, Family: 1, Stage1Time: 60, Stage2Time: 30},
		{ID: 7, DueDate: 450, Family: 3, Stage1Time: 42, Stage2Time: 38},
		{ID: 8, DueDate: 600, Family: 2, Stage1Time: 48, Stage2Time: 28},
	}
}

func testParameters() *Parameters {
	p := DefaultParameters()
	p.PopulationSize = 20
	p.Generations = 30
	p.TournamentSize = 3
	return p
}

func newTestOptimizer(t *testing.T, params *Parameters, initial []int64, seed int64) *Optimizer {
	t.Helper()
	sim := simulator.New(simulator.DefaultOptions())
	opt, err := New(params, testJobs(), initial, sim, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("创建优化器失败：%v", err)
	}
	return opt
}

func TestOptimizeBestNeverWorsens(t *testing.T) {
	opt := newTestOptimizer(t, testParameters(), nil, 1)

	var history []float64
	result, err := opt.Optimize(NewToken(), func(p *domain.OptimizationProgress) {
		history = append(history, p.BestFitness)
	})
	if err != nil {
		t.Fatalf("优化失败：%v", err)
	}

	if len(history) != 30 {
		t.Fatalf("每代应该回调一次进度，期望 30 次，得到 %d 次", len(history))
	}

	// 精英保留保证历代最优单调不升
	for i := 1; i < len(history); i++ {
		if history[i] > history[i-1] {
			t.Errorf("第 %d 代最优适应度 %v 比上一代 %v 更差", i+1, history[i], history[i-1])
		}
	}

	if result.GenerationsRun != 30 {
		t.Errorf("应该跑满 30 代，得到 %d", result.GenerationsRun)
	}
	if len(result.FitnessHistory) != 30 {
		t.Errorf("适应度历史应该每代一条，得到 %d 条", len(result.FitnessHistory))
	}
}

func TestOptimizeZeroGenerations(t *testing.T) {
	params := testParameters()
	params.Generations = 0

	initial := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	opt := newTestOptimizer(t, params, initial, 2)

	result, err := opt.Optimize(NewToken(), nil)
	if err != nil {
		t.Fatalf("优化失败：%v", err)
	}

	if result.GenerationsRun != 0 {
		t.Errorf("代数为 0 时不应该迭代，得到 %d 代", result.GenerationsRun)
	}

	// 结果仍然是初始种群中的最优个体，必须是合法排列
	assertPermutation(t, initial, result.BestSequence)

	// 最优个体不会比种子个体（用户的手工顺序）更差
	sim := simulator.New(simulator.DefaultOptions())
	seedSchedule := sim.Run(testJobs(), initial)
	seedFitness := (1-params.TardinessWeight)*seedSchedule.Makespan + params.TardinessWeight*seedSchedule.TotalTardiness

	bestSchedule := sim.Run(testJobs(), result.BestSequence)
	bestFitness := (1-params.TardinessWeight)*bestSchedule.Makespan + params.TardinessWeight*bestSchedule.TotalTardiness
	if bestFitness > seedFitness {
		t.Errorf("最优个体的适应度 %v 不应该比种子个体的 %v 差", bestFitness, seedFitness)
	}
}

func TestOptimizeCancellation(t *testing.T) {
	opt := newTestOptimizer(t, testParameters(), nil, 3)

	token := NewToken()
	token.Cancel()

	result, err := opt.Optimize(token, nil)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("取消后的运行应该返回 ErrCancelled，得到 %v", err)
	}
	if result != nil {
		t.Errorf("被取消的运行不应该产生结果")
	}
}

func TestOptimizeCancelMidRun(t *testing.T) {
	opt := newTestOptimizer(t, testParameters(), nil, 4)

	token := NewToken()
	calls := 0
	_, err := opt.Optimize(token, func(p *domain.OptimizationProgress) {
		calls++
		if calls == 5 {
			token.Cancel()
		}
	})

	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("运行中途取消应该返回 ErrCancelled，得到 %v", err)
	}
	if calls != 5 {
		t.Errorf("取消应该在下一代开始前生效，进度回调了 %d 次", calls)
	}
}

func TestOptimizeResultReproducible(t *testing.T) {
	opt := newTestOptimizer(t, testParameters(), nil, 5)

	result, err := opt.Optimize(NewToken(), nil)
	if err != nil {
		t.Fatalf("优化失败：%v", err)
	}

	// 结果中的指标必须能用最优顺序重新仿真复现
	sim := simulator.New(simulator.DefaultOptions())
	schedule := sim.Run(testJobs(), result.BestSequence)

	if schedule.Makespan != result.Makespan {
		t.Errorf("重新仿真的 makespan %v 与结果中的 %v 不一致", schedule.Makespan, result.Makespan)
	}
	if schedule.TotalTardiness != result.TotalTardiness {
		t.Errorf("重新仿真的总延期 %v 与结果中的 %v 不一致", schedule.TotalTardiness, result.TotalTardiness)
	}
}

func TestOptimizeSerialMatchesParallel(t *testing.T) {
	// 个体评估是纯函数，worker 数量不影响结果
	serial := newTestOptimizer(t, testParameters(), nil, 6)
	serial.Workers = 1
	parallel := newTestOptimizer(t, testParameters(), nil, 6)
	parallel.Workers = 4

	serialResult, err := serial.Optimize(NewToken(), nil)
	if err != nil {
		t.Fatalf("串行优化失败：%v", err)
	}
	parallelResult, err := parallel.Optimize(NewToken(), nil)
	if err != nil {
		t.Fatalf("并行优化失败：%v", err)
	}

	if serialResult.Makespan != parallelResult.Makespan ||
		serialResult.TotalTardiness != parallelResult.TotalTardiness {
		t.Errorf("串行和并行评估的结果不一致：%v/%v 与 %v/%v",
			serialResult.Makespan, serialResult.TotalTardiness,
			parallelResult.Makespan, parallelResult.TotalTardiness)
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	sim := simulator.New(simulator.DefaultOptions())
	rng := rand.New(rand.NewSource(1))

	badParams := testParameters()
	badParams.PopulationSize = 1
	if _, err := New(badParams, testJobs(), nil, sim, rng); err == nil {
		t.Errorf("非法参数应该被拒绝")
	}

	if _, err := New(testParameters(), nil, nil, sim, rng); err == nil {
		t.Errorf("空工件列表应该被拒绝")
	}

	if _, err := New(testParameters(), testJobs(), []int64{1, 2, 3}, sim, rng); err == nil {
		t.Errorf("不完整的初始顺序应该被拒绝")
	}

	if _, err := New(testParameters(), testJobs(), nil, sim, nil); err == nil {
		t.Errorf("空随机数生成器应该被拒绝")
	}
}
