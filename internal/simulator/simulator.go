package simulator

import (
	"log/slog"
	"math"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/config"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
)

// Options: 仿真器的车间参数，默认值对应实际产线的配置
type Options struct {
	Stage1Machines int
	Stage2Machines int
	MinorSetup     float64
	MajorSetup     float64
	Stage2Setup    float64
	MaxIterations  int
}

func DefaultOptions() Options {
	return Options{
		Stage1Machines: 4,
		Stage2Machines: 5,
		MinorSetup:     20,
		MajorSetup:     65,
		Stage2Setup:    25,
		MaxIterations:  100000,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Stage1Machines: cfg.Simulation.Stage1Machines,
		Stage2Machines: cfg.Simulation.Stage2Machines,
		MinorSetup:     cfg.Simulation.MinorSetup,
		MajorSetup:     cfg.Simulation.MajorSetup,
		Stage2Setup:    cfg.Simulation.Stage2Setup,
		MaxIterations:  cfg.Simulation.MaxIterations,
	}
}

// Simulator: 两阶段混合流水车间的离散事件仿真器。
// Run 是纯函数：同样的输入一定产生同样的排程，
// 每次运行构造自己的机器和套件状态，可以被多个 goroutine 并发调用
type Simulator struct {
	opts Options
}

func New(opts Options) *Simulator {
	return &Simulator{opts: opts}
}

// Run 按给定的第一阶段加工顺序对工件列表做仿真，返回完整排程。
// sequence 必须是 jobs 中所有工件 ID 的一个排列（由调用方校验），
// 空的工件列表会得到一个空排程而不是错误
func (s *Simulator) Run(jobs []domain.Job, sequence []int64) *domain.Schedule {
	r := newSimRun(s.opts, jobs, sequence)

	// 初始分派，之后每处理一个事件都会再尝试一次
	r.assignStage1()

	for {
		ev, ok := r.events.pop()
		if !ok {
			break
		}
		if r.iterations >= r.opts.MaxIterations {
			// 事件数超出上限说明排程卡死（比如配置错误导致某个族的套件永远拿不到），
			// 返回已有的部分排程供诊断，由调用方决定怎么处理
			slog.Warn("仿真事件数达到上限，返回截断的排程",
				"iterations", r.iterations, "jobs", len(jobs), "scheduled", len(r.scheduled))
			r.truncated = true
			break
		}
		r.iterations++
		r.clock = ev.time

		switch ev.typ {
		case eventStage1Complete:
			r.machineByID(ev.machineID).currentJob = -1
			r.queue2 = append(r.queue2, ev.jobIndex)
			r.assignStage2()
		case eventStage2Complete:
			r.machineByID(ev.machineID).currentJob = -1
			r.assignStage2()
		default:
			// 换模和开工事件只推进时钟
		}

		// 机器或套件的释放可能解除第一阶段队头的阻塞
		r.assignStage1()
	}

	return r.buildSchedule()
}

// simRun: 一次仿真运行的全部可变状态，运行结束即丢弃
type simRun struct {
	opts       Options
	jobs       []domain.Job
	clock      float64
	events     eventQueue
	stage1     []*machine
	stage2     []*machine
	kits       map[int32]*setupKit
	queue1     []int // 等待第一阶段的工件下标，FIFO
	queue2     []int // 完成第一阶段等待第二阶段的工件下标，FIFO
	stage1End  []float64
	scheduled  []domain.ScheduledJob
	iterations int
	truncated  bool
}

func newSimRun(opts Options, jobs []domain.Job, sequence []int64) *simRun {
	r := &simRun{
		opts:      opts,
		jobs:      jobs,
		stage1:    newMachines(opts.Stage1Machines, 1, 1),
		stage2:    newMachines(opts.Stage2Machines, 2, int32(opts.Stage1Machines)+1),
		kits:      make(map[int32]*setupKit),
		stage1End: make([]float64, len(jobs)),
		scheduled: make([]domain.ScheduledJob, 0, 2*len(jobs)),
	}

	byID := make(map[int64]int, len(jobs))
	for i, job := range jobs {
		byID[job.ID] = i
		// 每个族一个换模套件
		if _, exists := r.kits[job.Family]; !exists {
			r.kits[job.Family] = &setupKit{family: job.Family, machineID: noneID}
		}
	}

	r.queue1 = make([]int, 0, len(sequence))
	for _, id := range sequence {
		if idx, exists := byID[id]; exists {
			r.queue1 = append(r.queue1, idx)
		}
	}

	return r
}

func (r *simRun) machineByID(id int32) *machine {
	if int(id) <= r.opts.Stage1Machines {
		return r.stage1[id-1]
	}
	return r.stage2[int(id)-r.opts.Stage1Machines-1]
}

// assignStage1 反复尝试把第一阶段队头分派到可行机器上：
// 套件在本机 -> 小换模；套件空闲或在别的机器上已用完 -> 大换模（可能需要转移）；
// 套件还被别的机器占用 -> 本机不可行（不允许抢占）。
// 在可行机器中选开工时间最早的；队头无可行机器时停止，等待下一个事件
func (r *simRun) assignStage1() {
	for len(r.queue1) > 0 {
		idx := r.queue1[0]
		job := r.jobs[idx]
		kit := r.kits[job.Family]

		var best *machine
		bestStart := math.Inf(1)
		bestSetupStart := 0.0
		bestSetup := domain.SetupMajor

		for _, m := range r.stage1 {
			base := math.Max(m.availableAt, r.clock)

			var setupType domain.SetupType
			var setupStart float64
			switch {
			case kit.machineID == m.id:
				setupType = domain.SetupMinor
				setupStart = base
			case kit.machineID != noneID:
				// 套件在别的机器上：只有等它用完才能转移过来
				if kit.availableAt > r.clock {
					continue
				}
				setupType = domain.SetupMajor
				setupStart = math.Max(base, kit.availableAt)
			default:
				setupType = domain.SetupMajor
				setupStart = math.Max(base, kit.availableAt)
			}

			setupTime := r.opts.MinorSetup
			if setupType == domain.SetupMajor {
				setupTime = r.opts.MajorSetup
			}
			start := setupStart + setupTime
			if start < bestStart {
				best = m
				bestStart = start
				bestSetupStart = setupStart
				bestSetup = setupType
			}
		}

		if best == nil {
			// 队头被套件占用阻塞，整个队列等待
			return
		}

		// 套件转移：先解除旧机器的绑定（物理转移的时间开销已计入大换模）
		if kit.machineID != noneID && kit.machineID != best.id {
			r.machineByID(kit.machineID).kit = noneID
		}
		// 本机原来装的其他族套件下架回架子
		if best.kit != noneID && best.kit != job.Family {
			r.kits[best.kit].machineID = noneID
		}
		kit.machineID = best.id
		best.kit = job.Family

		setupTime := r.opts.MinorSetup
		if bestSetup == domain.SetupMajor {
			setupTime = r.opts.MajorSetup
		}
		start := bestSetupStart + setupTime
		end := start + job.Stage1Time

		best.availableAt = end
		best.busyTime += end - bestSetupStart
		best.currentJob = idx
		kit.availableAt = end
		r.stage1End[idx] = end

		r.events.push(event{time: bestSetupStart, typ: eventSetupStart, jobIndex: idx, machineID: best.id})
		r.events.push(event{time: start, typ: eventSetupEnd, jobIndex: idx, machineID: best.id})
		r.events.push(event{time: start, typ: eventJobStart, jobIndex: idx, machineID: best.id})
		r.events.push(event{time: end, typ: eventStage1Complete, jobIndex: idx, machineID: best.id})

		r.scheduled = append(r.scheduled, domain.ScheduledJob{
			JobID:          job.ID,
			MachineID:      best.id,
			Stage:          1,
			StartTime:      start,
			EndTime:        end,
			SetupType:      bestSetup,
			SetupStartTime: bestSetupStart,
			SetupTime:      setupTime,
			ProcessingTime: job.Stage1Time,
			Family:         job.Family,
		})

		r.queue1 = r.queue1[1:]
	}
}

// assignStage2 把第二阶段队列全部分派掉：第二阶段没有套件约束，
// 每个工件固定换模后分派到最早空闲的机器，队列不会阻塞
func (r *simRun) assignStage2() {
	for len(r.queue2) > 0 {
		idx := r.queue2[0]
		job := r.jobs[idx]

		best := r.stage2[0]
		for _, m := range r.stage2[1:] {
			if m.availableAt < best.availableAt {
				best = m
			}
		}

		setupStart := math.Max(math.Max(r.stage1End[idx], best.availableAt), r.clock)
		start := setupStart + r.opts.Stage2Setup
		end := start + job.Stage2Time

		best.availableAt = end
		best.busyTime += end - setupStart
		best.currentJob = idx

		tardiness := math.Max(0, end-job.DueDate)

		r.events.push(event{time: setupStart, typ: eventSetupStart, jobIndex: idx, machineID: best.id})
		r.events.push(event{time: start, typ: eventSetupEnd, jobIndex: idx, machineID: best.id})
		r.events.push(event{time: start, typ: eventJobStart, jobIndex: idx, machineID: best.id})
		r.events.push(event{time: end, typ: eventStage2Complete, jobIndex: idx, machineID: best.id})

		r.scheduled = append(r.scheduled, domain.ScheduledJob{
			JobID:          job.ID,
			MachineID:      best.id,
			Stage:          2,
			StartTime:      start,
			EndTime:        end,
			SetupType:      domain.SetupStage2,
			SetupStartTime: setupStart,
			SetupTime:      r.opts.Stage2Setup,
			ProcessingTime: job.Stage2Time,
			Family:         job.Family,
			IsLate:         tardiness > 0,
			Tardiness:      tardiness,
		})

		r.queue2 = r.queue2[1:]
	}
}

func (r *simRun) buildSchedule() *domain.Schedule {
	schedule := &domain.Schedule{
		Jobs: r.scheduled,
		SetupCounts: map[domain.SetupType]int{
			domain.SetupNone:   0,
			domain.SetupMinor:  0,
			domain.SetupMajor:  0,
			domain.SetupStage2: 0,
		},
		Truncated: r.truncated,
	}

	finished := 0
	for _, sj := range r.scheduled {
		if sj.EndTime > schedule.Makespan {
			schedule.Makespan = sj.EndTime
		}
		schedule.SetupCounts[sj.SetupType]++
		if sj.Stage == 2 {
			schedule.TotalTardiness += sj.Tardiness
			finished++
		}
	}
	if finished > 0 {
		schedule.AverageTardiness = schedule.TotalTardiness / float64(finished)
	}

	if schedule.Makespan > 0 {
		var busy1, busy2 float64
		for _, m := range r.stage1 {
			busy1 += m.busyTime
		}
		for _, m := range r.stage2 {
			busy2 += m.busyTime
		}
		schedule.Stage1Utilization = busy1 / (schedule.Makespan * float64(len(r.stage1)))
		schedule.Stage2Utilization = busy2 / (schedule.Makespan * float64(len(r.stage2)))
	}

	return schedule
}
