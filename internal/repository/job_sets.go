package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
)

func (r *Repository) CreateJobSet(jobSet *domain.JobSet) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO job_sets (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	if err := tx.QueryRowContext(ctx, query, jobSet.Name, jobSet.Description).Scan(&jobSet.ID, &jobSet.CreatedAt, &jobSet.Version); err != nil {
		return err
	}

	query = `
		INSERT INTO jobs (job_set_id, job_id, due_date, family, stage1_time, stage2_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, job := range jobSet.Jobs {
		args := []any{jobSet.ID, job.ID, job.DueDate, job.Family, job.Stage1Time, job.Stage2Time}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetJobSetByID(id int64) (*domain.JobSet, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT name, description, created_at, version
		FROM job_sets WHERE id = $1
	`

	jobSet := &domain.JobSet{
		ID:   id,
		Jobs: make([]domain.Job, 0),
	}

	dst := []any{&jobSet.Name, &jobSet.Description, &jobSet.CreatedAt, &jobSet.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	query = `
		SELECT job_id, due_date, family, stage1_time, stage2_time
		FROM jobs WHERE job_set_id = $1
		ORDER BY job_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var job domain.Job
		dst := []any{&job.ID, &job.DueDate, &job.Family, &job.Stage1Time, &job.Stage2Time}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		jobSet.Jobs = append(jobSet.Jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobSet, nil
}

func (r *Repository) GetAllJobSets() ([]*domain.JobSet, error) {
	// 列表页不需要每个工件组的全部工件，这里只返回基本信息
	query := `
		SELECT id, name, description, created_at, version FROM job_sets
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobSets := []*domain.JobSet{}
	for rows.Next() {
		var jobSet domain.JobSet
		dst := []any{&jobSet.ID, &jobSet.Name, &jobSet.Description, &jobSet.CreatedAt, &jobSet.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		jobSets = append(jobSets, &jobSet)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobSets, nil
}

func (r *Repository) DeleteJobSet(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先删除属于这个工件组的工件和运行记录
	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE job_set_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM optimization_runs WHERE job_set_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM job_sets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
