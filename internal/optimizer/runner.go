package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/config"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/repository"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/simulator"
)

// Runner 管理所有正在进行的后台优化运行：
// 每个运行一个 goroutine 和一个专属的取消 Token，
// 进度快照写入 redis 供前端轮询，终态写入数据库，
// 完成后通过消息队列通知申请人
type Runner struct {
	cfg           *config.Config
	repo          *repository.Repository
	redisClient   *redis.Client
	notifyChannel *amqp.Channel

	mu     sync.Mutex
	tokens map[int64]*Token
}

func NewRunner(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, notifyCh *amqp.Channel) *Runner {
	return &Runner{
		cfg:           cfg,
		repo:          repo,
		redisClient:   rdb,
		notifyChannel: notifyCh,
		tokens:        make(map[int64]*Token),
	}
}

// Start 在后台启动一次优化运行。运行记录必须已经持久化（状态为 running）
func (rn *Runner) Start(run *domain.OptimizationRun, jobSet *domain.JobSet, params *Parameters, initialSequence []int64, requester *domain.User) error {
	sim := simulator.New(simulator.OptionsFromConfig(rn.cfg))
	opt, err := New(params, jobSet.Jobs, initialSequence, sim, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	if rn.cfg.Optimizer.Workers > 0 {
		opt.Workers = rn.cfg.Optimizer.Workers
	}

	token := NewToken()
	rn.mu.Lock()
	rn.tokens[run.ID] = token
	rn.mu.Unlock()

	go rn.execute(run, jobSet, opt, token, requester)

	return nil
}

// Cancel 请求取消某个运行，返回该运行是否还在进行中。
// 取消在下一代开始前生效
func (rn *Runner) Cancel(runID int64) bool {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	token, exists := rn.tokens[runID]
	if !exists {
		return false
	}
	token.Cancel()
	return true
}

// Running 返回某个运行是否还在进行中
func (rn *Runner) Running(runID int64) bool {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	_, exists := rn.tokens[runID]
	return exists
}

func (rn *Runner) progressKey(runID int64) string {
	return fmt.Sprintf("optimization_run_%d_progress", runID)
}

// GetProgressSnapshot 读取某个运行最新的进度消息，没有则返回 redis.Nil
func (rn *Runner) GetProgressSnapshot(runID int64) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(rn.cfg.Redis.OperationTimeout)*time.Second)
	defer cancel()

	data, err := rn.redisClient.Get(ctx, rn.progressKey(runID)).Bytes()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (rn *Runner) writeSnapshot(runID int64, msg *domain.OptimizationMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("无法序列化进度消息", "runID", runID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(rn.cfg.Redis.OperationTimeout)*time.Second)
	defer cancel()

	expiration := time.Duration(rn.cfg.Redis.ProgressExpiration) * time.Second
	if err := rn.redisClient.Set(ctx, rn.progressKey(runID), data, expiration).Err(); err != nil {
		slog.Error("无法写入进度快照", "runID", runID, "error", err)
	}
}

// execute 是运行的主体：零个或多个进度消息之后，恰好一个终态
// （完成、失败或取消确认），取消后绝不会再发完成消息
func (rn *Runner) execute(run *domain.OptimizationRun, jobSet *domain.JobSet, opt *Optimizer, token *Token, requester *domain.User) {
	defer func() {
		rn.mu.Lock()
		delete(rn.tokens, run.ID)
		rn.mu.Unlock()
	}()

	result, err := opt.Optimize(token, func(progress *domain.OptimizationProgress) {
		rn.writeSnapshot(run.ID, &domain.OptimizationMessage{
			Kind:     domain.MessageProgress,
			Progress: progress,
		})
	})

	switch {
	case errors.Is(err, ErrCancelled):
		slog.Info("优化运行已取消", "runID", run.ID)
		rn.writeSnapshot(run.ID, &domain.OptimizationMessage{Kind: domain.MessageCancelled})
		if dbErr := rn.repo.FinishOptimizationRun(run.ID, domain.RunStatusCancelled, nil, ""); dbErr != nil {
			slog.Error("无法更新运行状态为已取消", "runID", run.ID, "error", dbErr)
		}
	case err != nil:
		slog.Error("优化运行失败", "runID", run.ID, "error", err)
		rn.writeSnapshot(run.ID, &domain.OptimizationMessage{Kind: domain.MessageError, Error: err.Error()})
		if dbErr := rn.repo.FinishOptimizationRun(run.ID, domain.RunStatusFailed, nil, err.Error()); dbErr != nil {
			slog.Error("无法更新运行状态为失败", "runID", run.ID, "error", dbErr)
		}
	default:
		slog.Info("优化运行完成", "runID", run.ID,
			"makespan", result.Makespan, "totalTardiness", result.TotalTardiness,
			"improvementPercent", result.ImprovementPercent, "executionTimeMs", result.ExecutionTimeMs)
		rn.writeSnapshot(run.ID, &domain.OptimizationMessage{Kind: domain.MessageComplete, Result: result})
		if dbErr := rn.repo.FinishOptimizationRun(run.ID, domain.RunStatusCompleted, result, ""); dbErr != nil {
			slog.Error("无法保存运行结果", "runID", run.ID, "error", dbErr)
		}
		rn.notifyCompletion(run, jobSet, result, requester)
	}
}

// notifyCompletion 把运行摘要发到通知队列，由 mail worker 发邮件给申请人
func (rn *Runner) notifyCompletion(run *domain.OptimizationRun, jobSet *domain.JobSet, result *domain.GAResult, requester *domain.User) {
	mailMessage := domain.MailMessage{
		Type: "optimization_complete",
		To:   requester.Email,
		Data: domain.OptimizationCompleteMailData{
			FullName:           requester.FullName,
			JobSetName:         jobSet.Name,
			RunID:              run.ID,
			Makespan:           result.Makespan,
			TotalTardiness:     result.TotalTardiness,
			ImprovementPercent: result.ImprovementPercent,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		slog.Error("无法序列化通知消息", "runID", run.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(rn.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := rn.notifyChannel.PublishWithContext(
		ctx,
		"",
		"notify_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		slog.Error("无法发送完成通知", "runID", run.ID, "error", err)
	}
}
