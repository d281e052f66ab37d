package domain

import (
	"encoding/json"
	"time"
)

type MutationMethod string

const (
	MutationSwap   MutationMethod = "swap"
	MutationInsert MutationMethod = "insert"
)

// OptimizationProgress: 每一代结束后向外部报告的进度
type OptimizationProgress struct {
	Generation    int     `json:"generation"`
	BestFitness   float64 `json:"bestFitness"`
	BestMakespan  float64 `json:"bestMakespan"`
	BestTardiness float64 `json:"bestTardiness"`
	BestSequence  []int64 `json:"bestSequence"`
}

// GAResult: 一次优化运行的最终结果
type GAResult struct {
	BestSequence       []int64   `json:"bestSequence"`
	Makespan           float64   `json:"makespan"`
	TotalTardiness     float64   `json:"totalTardiness"`
	ImprovementPercent float64   `json:"improvementPercent"`
	GenerationsRun     int       `json:"generationsRun"`
	ExecutionTimeMs    int64     `json:"executionTimeMs"`
	FitnessHistory     []float64 `json:"fitnessHistory"`
}

type OptimizationMessageKind string

const (
	MessageProgress  OptimizationMessageKind = "progress"
	MessageComplete  OptimizationMessageKind = "complete"
	MessageError     OptimizationMessageKind = "error"
	MessageCancelled OptimizationMessageKind = "cancelled"
)

// OptimizationMessage: 优化器对外的消息，固定为四种类型之一，
// 每种类型只带自己的数据，避免调用方根据字段猜测消息含义
type OptimizationMessage struct {
	Kind     OptimizationMessageKind `json:"kind"`
	Progress *OptimizationProgress   `json:"progress,omitempty"`
	Result   *GAResult               `json:"result,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// OptimizationRun: 一次后台优化运行的持久化记录
type OptimizationRun struct {
	ID              int64           `json:"id"`
	JobSetID        int64           `json:"jobSetID"`
	Status          RunStatus       `json:"status"`
	Parameters      json.RawMessage `json:"parameters"`
	InitialSequence []int64         `json:"initialSequence,omitempty"`
	Result          *GAResult       `json:"result,omitempty"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	FinishedAt      *time.Time      `json:"finishedAt,omitempty"`
	Version         int32           `json:"-"`
}
