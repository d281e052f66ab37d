package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
)

func (r *Repository) CreateOptimizationRun(run *domain.OptimizationRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	initialSequence, err := json.Marshal(run.InitialSequence)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO optimization_runs (job_set_id, status, parameters, initial_sequence)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{run.JobSetID, run.Status, string(run.Parameters), string(initialSequence)}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&run.ID, &run.CreatedAt, &run.Version); err != nil {
		return err
	}

	return nil
}

// FinishOptimizationRun 把运行置为终态。每个运行只会有一个终态：
// 完成时带结果，失败时带错误信息，取消时两者都没有
func (r *Repository) FinishOptimizationRun(id int64, status domain.RunStatus, result *domain.GAResult, errorMessage string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var bestSequence, fitnessHistory any
	var makespan, totalTardiness, improvement sql.NullFloat64
	var generationsRun, executionTimeMs sql.NullInt64

	if result != nil {
		sequenceData, err := json.Marshal(result.BestSequence)
		if err != nil {
			return err
		}
		historyData, err := json.Marshal(result.FitnessHistory)
		if err != nil {
			return err
		}
		bestSequence = string(sequenceData)
		fitnessHistory = string(historyData)
		makespan = sql.NullFloat64{Float64: result.Makespan, Valid: true}
		totalTardiness = sql.NullFloat64{Float64: result.TotalTardiness, Valid: true}
		improvement = sql.NullFloat64{Float64: result.ImprovementPercent, Valid: true}
		generationsRun = sql.NullInt64{Int64: int64(result.GenerationsRun), Valid: true}
		executionTimeMs = sql.NullInt64{Int64: result.ExecutionTimeMs, Valid: true}
	}

	query := `
		UPDATE optimization_runs
		SET
			status = $1,
			error_message = $2,
			best_sequence = $3,
			makespan = $4,
			total_tardiness = $5,
			improvement_percent = $6,
			generations_run = $7,
			execution_time_ms = $8,
			fitness_history = $9,
			finished_at = now(),
			version = version + 1
		WHERE id = $10 AND status = $11
	`

	args := []any{
		status,
		errorMessage,
		bestSequence,
		makespan,
		totalTardiness,
		improvement,
		generationsRun,
		executionTimeMs,
		fitnessHistory,
		id,
		domain.RunStatusRunning,
	}

	res, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// 运行不存在或者已经是终态
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) GetOptimizationRunByID(id int64) (*domain.OptimizationRun, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			job_set_id, status, parameters, initial_sequence, error_message,
			best_sequence, makespan, total_tardiness, improvement_percent,
			generations_run, execution_time_ms, fitness_history,
			created_at, finished_at, version
		FROM optimization_runs WHERE id = $1
	`

	run := &domain.OptimizationRun{
		ID: id,
	}

	var row struct {
		parameters      string
		initialSequence string
		errorMessage    sql.NullString
		bestSequence    sql.NullString
		makespan        sql.NullFloat64
		totalTardiness  sql.NullFloat64
		improvement     sql.NullFloat64
		generationsRun  sql.NullInt64
		executionTimeMs sql.NullInt64
		fitnessHistory  sql.NullString
		finishedAt      sql.NullTime
	}

	dst := []any{
		&run.JobSetID,
		&run.Status,
		&row.parameters,
		&row.initialSequence,
		&row.errorMessage,
		&row.bestSequence,
		&row.makespan,
		&row.totalTardiness,
		&row.improvement,
		&row.generationsRun,
		&row.executionTimeMs,
		&row.fitnessHistory,
		&run.CreatedAt,
		&row.finishedAt,
		&run.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	run.Parameters = json.RawMessage(row.parameters)
	if row.initialSequence != "" {
		if err := json.Unmarshal([]byte(row.initialSequence), &run.InitialSequence); err != nil {
			return nil, err
		}
	}
	if row.errorMessage.Valid {
		run.ErrorMessage = row.errorMessage.String
	}
	if row.finishedAt.Valid {
		run.FinishedAt = &row.finishedAt.Time
	}

	// 只有完成的运行才有结果
	if run.Status == domain.RunStatusCompleted && row.bestSequence.Valid {
		result := &domain.GAResult{
			Makespan:           row.makespan.Float64,
			TotalTardiness:     row.totalTardiness.Float64,
			ImprovementPercent: row.improvement.Float64,
			GenerationsRun:     int(row.generationsRun.Int64),
			ExecutionTimeMs:    row.executionTimeMs.Int64,
		}
		if err := json.Unmarshal([]byte(row.bestSequence.String), &result.BestSequence); err != nil {
			return nil, err
		}
		if row.fitnessHistory.Valid {
			if err := json.Unmarshal([]byte(row.fitnessHistory.String), &result.FitnessHistory); err != nil {
				return nil, err
			}
		}
		run.Result = result
	}

	return run, nil
}

func (r *Repository) GetOptimizationRunsByJobSetID(jobSetID int64) ([]*domain.OptimizationRun, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	// 列表页只需要概要信息
	query := `
		SELECT id, status, parameters, created_at, finished_at, version
		FROM optimization_runs
		WHERE job_set_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, jobSetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*domain.OptimizationRun{}
	for rows.Next() {
		run := &domain.OptimizationRun{
			JobSetID: jobSetID,
		}
		var parameters string
		var finishedAt sql.NullTime
		dst := []any{&run.ID, &run.Status, &parameters, &run.CreatedAt, &finishedAt, &run.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		run.Parameters = json.RawMessage(parameters)
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
