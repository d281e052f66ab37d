package utils

import (
	"testing"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
)

func validJobs() []domain.Job {
	return []domain.Job{
		{ID: 1, DueDate: 100, Family: 1, Stage1Time: 10, Stage2Time: 5},
		{ID: 2, DueDate: 200, Family: 2, Stage1Time: 20, Stage2Time: 15},
		{ID: 3, DueDate: 0, Family: 1, Stage1Time: 30, Stage2Time: 25},
	}
}

func TestValidateJobs(t *testing.T) {
	if err := ValidateJobs(validJobs()); err != nil {
		t.Fatalf("合法的工件列表不应该报错：%v", err)
	}

	cases := []struct {
		name string
		jobs []domain.Job
	}{
		{"空列表", nil},
		{"ID 为零", []domain.Job{{ID: 0, DueDate: 10, Stage1Time: 1, Stage2Time: 1}}},
		{"ID 为负", []domain.Job{{ID: -3, DueDate: 10, Stage1Time: 1, Stage2Time: 1}}},
		{"ID 重复", []domain.Job{
			{ID: 1, DueDate: 10, Stage1Time: 1, Stage2Time: 1},
			{ID: 1, DueDate: 20, Stage1Time: 2, Stage2Time: 2},
		}},
		{"交期为负", []domain.Job{{ID: 1, DueDate: -1, Stage1Time: 1, Stage2Time: 1}}},
		{"第一阶段工时为零", []domain.Job{{ID: 1, DueDate: 10, Stage1Time: 0, Stage2Time: 1}}},
		{"第二阶段工时为负", []domain.Job{{ID: 1, DueDate: 10, Stage1Time: 1, Stage2Time: -2}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateJobs(tc.jobs); err == nil {
				t.Errorf("非法的工件列表应该被拒绝")
			}
		})
	}
}

func TestValidateSequence(t *testing.T) {
	jobs := validJobs()

	if err := ValidateSequence(jobs, []int64{3, 1, 2}); err != nil {
		t.Fatalf("合法的排列不应该报错：%v", err)
	}

	cases := []struct {
		name     string
		sequence []int64
	}{
		{"长度不足", []int64{1, 2}},
		{"长度超出", []int64{1, 2, 3, 3}},
		{"包含未知工件", []int64{1, 2, 99}},
		{"工件重复", []int64{1, 1, 2}},
		{"空顺序", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateSequence(jobs, tc.sequence); err == nil {
				t.Errorf("非法的加工顺序应该被拒绝")
			}
		})
	}
}
