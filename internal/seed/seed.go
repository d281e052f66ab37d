package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/repository"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/utils"
)

// 工件表的列，顺序必须和 data/jobs.csv 的表头一致
var jobHeaders = []string{"id", "due_date", "family", "t_stage1", "t_stage2"}

// SeedRealData 从车间提供的 CSV 中导入一个工件集
func SeedRealData(r *repository.Repository) {
	file, err := os.Open("./internal/seed/data/jobs.csv")
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// 读取表头并校验
	headers, err := reader.Read()
	if err != nil {
		slog.Error("读取表头失败", "error", err)
		return
	}

	if len(headers) != len(jobHeaders) {
		slog.Error("表头列数不对", "expected", len(jobHeaders), "actual", len(headers))
		return
	}
	for i, header := range headers {
		if header != jobHeaders[i] {
			slog.Error("表头不匹配", "expected", jobHeaders[i], "actual", header)
			return
		}
	}

	// 读取工件数据
	jobs := []domain.Job{}
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("读取文件失败", "error", err)
			return
		}

		job, err := parseJobRow(row)
		if err != nil {
			slog.Error("解析工件失败", "row", row, "error", err)
			return
		}

		jobs = append(jobs, job)
	}

	if err := utils.ValidateJobs(jobs); err != nil {
		slog.Error("工件数据不合法", "error", err)
		return
	}

	jobSet := &domain.JobSet{
		Name:        fmt.Sprintf("车间导入 %s", time.Now().Format("2006-01-02")),
		Description: "从车间计划表导入的工件集",
		Jobs:        jobs,
	}

	if err := r.CreateJobSet(jobSet); err != nil {
		slog.Error("插入工件集失败", "error", err)
		return
	}

	slog.Info("插入数据完成", "job_set_id", jobSet.ID, "jobs", len(jobs))
}

func parseJobRow(row []string) (domain.Job, error) {
	job := domain.Job{}

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return job, fmt.Errorf("工件编号无效: %w", err)
	}

	dueDate, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return job, fmt.Errorf("交期无效: %w", err)
	}

	family, err := strconv.ParseInt(row[2], 10, 32)
	if err != nil {
		return job, fmt.Errorf("工件族无效: %w", err)
	}

	stage1Time, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return job, fmt.Errorf("第一阶段工时无效: %w", err)
	}

	stage2Time, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return job, fmt.Errorf("第二阶段工时无效: %w", err)
	}

	job.ID = id
	job.DueDate = dueDate
	job.Family = int32(family)
	job.Stage1Time = stage1Time
	job.Stage2Time = stage2Time

	return job, nil
}
