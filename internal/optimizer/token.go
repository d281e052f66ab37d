package optimizer

import "sync/atomic"

// Token: 一次优化运行专属的取消句柄。
// 每次运行持有自己的 Token，多个并发运行之间互不干扰；
// 优化器在每一代开始时检查一次，取消是协作式的
type Token struct {
	cancelled atomic.Bool
}

func NewToken() *Token {
	return &Token{}
}

func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}
