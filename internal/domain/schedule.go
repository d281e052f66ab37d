package domain

type SetupType string

const (
	SetupNone   SetupType = "none"
	SetupMinor  SetupType = "minor"  // 套件已在本机上，只需小换模
	SetupMajor  SetupType = "major"  // 需要把套件装到本机上，大换模
	SetupStage2 SetupType = "stage2" // 第二阶段的固定换模
)

// ScheduledJob: 仿真器对某个 (工件, 阶段) 的排程记录，只追加不修改
type ScheduledJob struct {
	JobID          int64     `json:"jobId"`
	MachineID      int32     `json:"machineId"`
	Stage          int32     `json:"stage"`
	StartTime      float64   `json:"startTime"`
	EndTime        float64   `json:"endTime"`
	SetupType      SetupType `json:"setupType"`
	SetupStartTime float64   `json:"setupStartTime"`
	SetupTime      float64   `json:"setupTime"`
	ProcessingTime float64   `json:"processingTime"`
	Family         int32     `json:"family"`
	IsLate         bool      `json:"isLate"`
	Tardiness      float64   `json:"tardiness"` // 只在第二阶段（最终阶段）有意义
}

// Schedule: 一次仿真运行的完整结果，构造完成后不再修改
type Schedule struct {
	Jobs              []ScheduledJob    `json:"jobs"`
	Makespan          float64           `json:"makespan"`
	TotalTardiness    float64           `json:"totalTardiness"`
	AverageTardiness  float64           `json:"averageTardiness"`
	SetupCounts       map[SetupType]int `json:"setupCounts"`
	Stage1Utilization float64           `json:"stage1Utilization"`
	Stage2Utilization float64           `json:"stage2Utilization"`
	// Truncated 表示事件循环达到迭代上限后提前终止，结果是截断的部分排程
	Truncated bool `json:"truncated"`
}

// FinishedJobCount 返回已经完成两个阶段的工件数量
func (s *Schedule) FinishedJobCount() int {
	cnt := 0
	for _, sj := range s.Jobs {
		if sj.Stage == 2 {
			cnt++
		}
	}
	return cnt
}
