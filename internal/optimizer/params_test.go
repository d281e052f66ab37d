package optimizer

import (
	"testing"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
)

func TestDefaultParametersValid(t *testing.T) {
	if err := DefaultParameters().Validate(); err != nil {
		t.Fatalf("默认参数必须通过校验：%v", err)
	}
}

func TestParametersValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"种群太小", func(p *Parameters) { p.PopulationSize = 10 }},
		{"种群太大", func(p *Parameters) { p.PopulationSize = 600 }},
		{"代数为负", func(p *Parameters) { p.Generations = -1 }},
		{"代数太大", func(p *Parameters) { p.Generations = 3000 }},
		{"锦标赛太小", func(p *Parameters) { p.TournamentSize = 1 }},
		{"锦标赛太大", func(p *Parameters) { p.TournamentSize = 8 }},
		{"交叉概率越界", func(p *Parameters) { p.CrossoverRate = 1.5 }},
		{"变异概率越界", func(p *Parameters) { p.MutationRate = -0.1 }},
		{"变异算子非法", func(p *Parameters) { p.MutationMethod = "scramble" }},
		{"精英比例太低", func(p *Parameters) { p.ElitismRate = 0.01 }},
		{"精英比例太高", func(p *Parameters) { p.ElitismRate = 0.5 }},
		{"延期权重越界", func(p *Parameters) { p.TardinessWeight = 1.2 }},
		{"自适应窗口太小", func(p *Parameters) { p.UseAdaptive = true; p.AdaptiveWindow = 2 }},
		{"自适应窗口太大", func(p *Parameters) { p.UseAdaptive = true; p.AdaptiveWindow = 100 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParameters()
			tc.mutate(p)
			if err := p.Validate(); err == nil {
				t.Errorf("非法参数应该被拒绝")
			}
		})
	}
}

func TestParametersZeroGenerations(t *testing.T) {
	// 代数为 0 是合法的：只评估初始种群
	p := DefaultParameters()
	p.Generations = 0
	if err := p.Validate(); err != nil {
		t.Errorf("代数为 0 应该通过校验：%v", err)
	}
}

func TestParametersAdaptiveWindowIgnoredWhenDisabled(t *testing.T) {
	p := DefaultParameters()
	p.UseAdaptive = false
	p.AdaptiveWindow = 0
	if err := p.Validate(); err != nil {
		t.Errorf("关闭自适应后窗口大小不参与校验：%v", err)
	}

	if p.MutationMethod != domain.MutationSwap {
		t.Errorf("默认变异算子应该是交换变异")
	}
}
