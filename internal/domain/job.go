package domain

import "time"

// Job: 一个待加工的工件，从导入数据创建后不再修改
// 所有时间字段的单位都是分钟（相对于仿真起点）
type Job struct {
	ID         int64   `json:"id"`
	DueDate    float64 `json:"dueDate"`
	Family     int32   `json:"family"` // 决定第一阶段需要哪个换模套件
	Stage1Time float64 `json:"t_stage1"`
	Stage2Time float64 `json:"t_stage2"`
}

// JobSet: 一组待排程的工件，是排程和优化操作的基本单位
type JobSet struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Jobs        []Job     `json:"jobs"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
