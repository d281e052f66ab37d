package utils

import (
	"fmt"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
)

// ValidateJobs 对导入的工件列表做结构校验，
// 不合法的输入直接拒绝，绝不静默修正
func ValidateJobs(jobs []domain.Job) error {
	if len(jobs) == 0 {
		return fmt.Errorf("工件列表不能为空")
	}

	seen := make(map[int64]bool, len(jobs))
	for _, job := range jobs {
		if job.ID <= 0 {
			return fmt.Errorf("工件 ID 必须为正整数（收到 %d）", job.ID)
		}
		if seen[job.ID] {
			return fmt.Errorf("工件 ID %d 重复", job.ID)
		}
		seen[job.ID] = true

		if job.DueDate < 0 {
			return fmt.Errorf("工件 %d 的交货期不能为负数", job.ID)
		}
		if job.Stage1Time <= 0 || job.Stage2Time <= 0 {
			return fmt.Errorf("工件 %d 的加工时长必须为正数", job.ID)
		}
	}

	return nil
}

// ValidateSequence 校验 sequence 是否恰好是 jobs 中所有工件 ID 的一个排列
func ValidateSequence(jobs []domain.Job, sequence []int64) error {
	if len(sequence) != len(jobs) {
		return fmt.Errorf("加工顺序的长度 %d 与工件数量 %d 不一致", len(sequence), len(jobs))
	}

	ids := make(map[int64]bool, len(jobs))
	for _, job := range jobs {
		ids[job.ID] = true
	}

	seen := make(map[int64]bool, len(sequence))
	for _, id := range sequence {
		if !ids[id] {
			return fmt.Errorf("加工顺序中的工件 %d 不存在", id)
		}
		if seen[id] {
			return fmt.Errorf("加工顺序中的工件 %d 重复", id)
		}
		seen[id] = true
	}

	return nil
}
