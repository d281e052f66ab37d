package handler

type ContextKey string

var (
	RoleCtxKey         ContextKey = "role"
	SubCtxKey          ContextKey = "sub"
	MyInfoCtx          ContextKey = "myInfo"
	UserInfoCtx        ContextKey = "userInfo"
	JobSetCtx          ContextKey = "jobSet"
	OptimizationRunCtx ContextKey = "optimizationRun"
)
