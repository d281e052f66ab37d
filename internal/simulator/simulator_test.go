package simulator

import (
	"reflect"
	"testing"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
)

func findScheduled(t *testing.T, schedule *domain.Schedule, jobID int64, stage int32) domain.ScheduledJob {
	t.Helper()
	for _, sj := range schedule.Jobs {
		if sj.JobID == jobID && sj.Stage == stage {
			return sj
		}
	}
	t.Fatalf("排程中找不到工件 %d 的第 %d 阶段记录", jobID, stage)
	return domain.ScheduledJob{}
}

// 同一个族的三个工件连续投料：第一个吃一次大换模，
// 后面两个复用已装好的套件，只需要小换模
func TestRunSameFamilySequence(t *testing.T) {
	jobs := []domain.Job{
		{ID: 1, DueDate: 500, Family: 1, Stage1Time: 10, Stage2Time: 5},
		{ID: 2, DueDate: 500, Family: 1, Stage1Time: 10, Stage2Time: 5},
		{ID: 3, DueDate: 500, Family: 1, Stage1Time: 10, Stage2Time: 5},
	}

	sim := New(DefaultOptions())
	schedule := sim.Run(jobs, []int64{1, 2, 3})

	job1 := findScheduled(t, schedule, 1, 1)
	if job1.SetupType != domain.SetupMajor {
		t.Errorf("工件 1 应该需要大换模，得到 %q", job1.SetupType)
	}
	if job1.SetupStartTime != 0 || job1.StartTime != 65 || job1.EndTime != 75 {
		t.Errorf("工件 1 的时间线错误：换模 %v 开工 %v 完工 %v，期望 0/65/75",
			job1.SetupStartTime, job1.StartTime, job1.EndTime)
	}

	job2 := findScheduled(t, schedule, 2, 1)
	if job2.SetupType != domain.SetupMinor {
		t.Errorf("工件 2 应该复用套件只做小换模，得到 %q", job2.SetupType)
	}
	if job2.MachineID != job1.MachineID {
		t.Errorf("工件 2 应该分派到装有套件的机器 %d，得到 %d", job1.MachineID, job2.MachineID)
	}
	if job2.SetupStartTime != 75 || job2.StartTime != 95 || job2.EndTime != 105 {
		t.Errorf("工件 2 的时间线错误：换模 %v 开工 %v 完工 %v，期望 75/95/105",
			job2.SetupStartTime, job2.StartTime, job2.EndTime)
	}

	job3 := findScheduled(t, schedule, 3, 1)
	if job3.SetupType != domain.SetupMinor {
		t.Errorf("工件 3 应该复用套件只做小换模，得到 %q", job3.SetupType)
	}
	if job3.SetupStartTime != 105 || job3.StartTime != 125 || job3.EndTime != 135 {
		t.Errorf("工件 3 的时间线错误：换模 %v 开工 %v 完工 %v，期望 105/125/135",
			job3.SetupStartTime, job3.StartTime, job3.EndTime)
	}
}

func TestRunEmptyJobList(t *testing.T) {
	sim := New(DefaultOptions())
	schedule := sim.Run(nil, nil)

	if schedule == nil {
		t.Fatalf("空输入应该返回空排程而不是 nil")
	}
	if schedule.Makespan != 0 {
		t.Errorf("空排程的 makespan 应该为 0，得到 %v", schedule.Makespan)
	}
	if len(schedule.Jobs) != 0 {
		t.Errorf("空排程不应该有任何加工记录，得到 %d 条", len(schedule.Jobs))
	}
	if schedule.Truncated {
		t.Errorf("空排程不应该被标记为截断")
	}
}

func testJobs() []domain.Job {
	return []domain.Job{
		{ID: 1, DueDate: 200, Family: 1, Stage1Time: 45, Stage2Time: 30},
		{ID: 2, DueDate: 260, Family: 1, Stage1Time: 50, Stage2Time: 35},
		{ID: 3, DueDate: 150, Family: 2, Stage1Time: 40, Stage2Time: 45},
		{ID: 4, DueDate: 400, Family: 2, Stage1Time: 55, Stage2Time: 25},
		{ID: 5, DueDate: 320, Family: 3, Stage1Time: 35, Stage2Time: 40},
		{ID: 6, DueDate: 500, Family: 1, Stage1Time: 60, Stage2Time: 30},
	}
}

func TestRunDeterminism(t *testing.T) {
	jobs := testJobs()
	sequence := []int64{3, 1, 5, 2, 6, 4}

	sim := New(DefaultOptions())
	first := sim.Run(jobs, sequence)
	second := sim.Run(jobs, sequence)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("同样的输入必须产生完全相同的排程")
	}
}

func TestRunStageOrdering(t *testing.T) {
	jobs := testJobs()
	sequence := []int64{1, 2, 3, 4, 5, 6}

	sim := New(DefaultOptions())
	schedule := sim.Run(jobs, sequence)

	for _, job := range jobs {
		stage1 := findScheduled(t, schedule, job.ID, 1)
		stage2 := findScheduled(t, schedule, job.ID, 2)

		// 第二阶段的换模最早在第一阶段完工后才能开始
		if stage2.SetupStartTime < stage1.EndTime {
			t.Errorf("工件 %d 的第二阶段换模开始于 %v，早于第一阶段完工时间 %v",
				job.ID, stage2.SetupStartTime, stage1.EndTime)
		}
		if stage2.SetupTime != DefaultOptions().Stage2Setup {
			t.Errorf("工件 %d 的第二阶段换模时长应该固定为 %v，得到 %v",
				job.ID, DefaultOptions().Stage2Setup, stage2.SetupTime)
		}
	}
}

func TestRunTardiness(t *testing.T) {
	jobs := testJobs()
	sequence := []int64{1, 2, 3, 4, 5, 6}

	sim := New(DefaultOptions())
	schedule := sim.Run(jobs, sequence)

	total := 0.0
	byID := make(map[int64]domain.Job, len(jobs))
	for _, job := range jobs {
		byID[job.ID] = job
	}

	for _, sj := range schedule.Jobs {
		if sj.Stage != 2 {
			continue
		}

		want := sj.EndTime - byID[sj.JobID].DueDate
		if want < 0 {
			want = 0
		}
		if sj.Tardiness != want {
			t.Errorf("工件 %d 的延期应该是 %v，得到 %v", sj.JobID, want, sj.Tardiness)
		}
		if sj.IsLate != (want > 0) {
			t.Errorf("工件 %d 的迟到标记与延期不一致", sj.JobID)
		}
		total += sj.Tardiness
	}

	if schedule.TotalTardiness != total {
		t.Errorf("总延期应该是各工件延期之和 %v，得到 %v", total, schedule.TotalTardiness)
	}
}

func TestRunMakespanAndUtilization(t *testing.T) {
	jobs := testJobs()
	sequence := []int64{6, 5, 4, 3, 2, 1}

	sim := New(DefaultOptions())
	schedule := sim.Run(jobs, sequence)

	maxEnd := 0.0
	for _, sj := range schedule.Jobs {
		if sj.EndTime > maxEnd {
			maxEnd = sj.EndTime
		}
	}
	if schedule.Makespan != maxEnd {
		t.Errorf("makespan 应该等于最晚完工时间 %v，得到 %v", maxEnd, schedule.Makespan)
	}

	if schedule.Stage1Utilization <= 0 || schedule.Stage1Utilization > 1 {
		t.Errorf("第一阶段利用率 %v 超出 (0, 1] 范围", schedule.Stage1Utilization)
	}
	if schedule.Stage2Utilization <= 0 || schedule.Stage2Utilization > 1 {
		t.Errorf("第二阶段利用率 %v 超出 (0, 1] 范围", schedule.Stage2Utilization)
	}

	if schedule.FinishedJobCount() != len(jobs) {
		t.Errorf("所有工件都应该完工，完工数 %d", schedule.FinishedJobCount())
	}
}

// 套件互斥：同一个族的第一阶段加工（含换模）在不同机器上不允许重叠
func TestRunKitExclusivity(t *testing.T) {
	jobs := testJobs()
	sequence := []int64{1, 3, 2, 5, 4, 6}

	sim := New(DefaultOptions())
	schedule := sim.Run(jobs, sequence)

	stage1 := []domain.ScheduledJob{}
	for _, sj := range schedule.Jobs {
		if sj.Stage == 1 {
			stage1 = append(stage1, sj)
		}
	}

	for i := 0; i < len(stage1); i++ {
		for j := i + 1; j < len(stage1); j++ {
			a, b := stage1[i], stage1[j]
			if a.Family != b.Family || a.MachineID == b.MachineID {
				continue
			}
			if a.SetupStartTime < b.EndTime && b.SetupStartTime < a.EndTime {
				t.Errorf("族 %d 的套件同时出现在机器 %d 和 %d 上：[%v, %v] 与 [%v, %v] 重叠",
					a.Family, a.MachineID, b.MachineID,
					a.SetupStartTime, a.EndTime, b.SetupStartTime, b.EndTime)
			}
		}
	}
}

func TestRunIterationCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 1

	sim := New(opts)
	schedule := sim.Run(testJobs(), []int64{1, 2, 3, 4, 5, 6})

	if !schedule.Truncated {
		t.Fatalf("事件数超出上限时排程应该被标记为截断")
	}
	if schedule.FinishedJobCount() == len(testJobs()) {
		t.Errorf("截断的排程不应该所有工件都完工")
	}
}
