package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/config"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/optimizer"
	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/repository"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	translator    ut.Translator
	notifyChannel *amqp.Channel
	redisClient   *redis.Client
	runner        *optimizer.Runner

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, notifyCh *amqp.Channel, rdb *redis.Client, runner *optimizer.Runner) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		translator:    trans,
		notifyChannel: notifyCh,
		redisClient:   rdb,
		runner:        runner,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
			})
		})

		r.Route("/job-sets", func(r chi.Router) {
			r.Post("/", h.CreateJobSet)
			r.Get("/", h.GetAllJobSets)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.jobSet)
				r.Get("/", h.GetJobSet)
				r.With(h.RequiredRole([]domain.Role{domain.RoleSeniorPlanner, domain.RoleAdmin})).Delete("/", h.DeleteJobSet)
				r.Post("/simulate", h.SimulateJobSet)
				r.Route("/optimizations", func(r chi.Router) {
					r.With(h.myInfo).Post("/", h.StartOptimization)
					r.Get("/", h.GetJobSetOptimizations)
				})
			})
		})

		r.Route("/optimizations/{id}", func(r chi.Router) {
			r.Use(h.optimizationRun)
			r.Get("/", h.GetOptimization)
			r.Get("/progress", h.GetOptimizationProgress)
			r.Post("/cancel", h.CancelOptimization)
		})
	})
}
