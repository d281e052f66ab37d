package optimizer

import (
	"fmt"

	"github.com/sysu-imse-dev/flowshop-scheduler/backend/internal/domain"
)

// Parameters: 遗传算法参数，范围约束与对外接口一致。
// Generations 允许为 0（只评估初始种群，不迭代），方便调试和对照实验
type Parameters struct {
	PopulationSize  int                   `json:"populationSize"`  // 种群大小
	Generations     int                   `json:"generations"`     // 迭代代数
	TournamentSize  int                   `json:"tournamentSize"`  // 锦标赛规模
	CrossoverRate   float64               `json:"crossoverRate"`   // 交叉概率
	MutationRate    float64               `json:"mutationRate"`    // 基础变异概率
	MutationMethod  domain.MutationMethod `json:"mutationMethod"`  // 变异算子
	ElitismRate     float64               `json:"elitismRate"`     // 精英比例
	TardinessWeight float64               `json:"tardinessWeight"` // 目标函数中延期的权重
	UseAdaptive     bool                  `json:"useAdaptive"`     // 是否自适应调节变异率
	AdaptiveWindow  int                   `json:"adaptiveWindow"`  // 停滞检测的窗口大小
}

func (p *Parameters) Validate() error {
	if p.PopulationSize < 20 || p.PopulationSize > 500 {
		return fmt.Errorf("种群大小必须在 [20, 500] 之间（收到 %d）", p.PopulationSize)
	}
	if p.Generations < 0 || p.Generations > 2000 {
		return fmt.Errorf("迭代代数必须在 [0, 2000] 之间（收到 %d）", p.Generations)
	}
	if p.TournamentSize < 2 || p.TournamentSize > 7 {
		return fmt.Errorf("锦标赛规模必须在 [2, 7] 之间（收到 %d）", p.TournamentSize)
	}
	if p.CrossoverRate < 0 || p.CrossoverRate > 1 {
		return fmt.Errorf("交叉概率必须在 [0, 1] 之间（收到 %f）", p.CrossoverRate)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("变异概率必须在 [0, 1] 之间（收到 %f）", p.MutationRate)
	}
	if p.MutationMethod != domain.MutationSwap && p.MutationMethod != domain.MutationInsert {
		return fmt.Errorf("不支持的变异算子 %q", p.MutationMethod)
	}
	if p.ElitismRate < 0.05 || p.ElitismRate > 0.3 {
		return fmt.Errorf("精英比例必须在 [0.05, 0.3] 之间（收到 %f）", p.ElitismRate)
	}
	if p.TardinessWeight < 0 || p.TardinessWeight > 1 {
		return fmt.Errorf("延期权重必须在 [0, 1] 之间（收到 %f）", p.TardinessWeight)
	}
	if p.UseAdaptive && (p.AdaptiveWindow < 5 || p.AdaptiveWindow > 50) {
		return fmt.Errorf("停滞检测窗口必须在 [5, 50] 之间（收到 %d）", p.AdaptiveWindow)
	}
	return nil
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize:  80,
		Generations:     200,
		TournamentSize:  4,
		CrossoverRate:   0.9,
		MutationRate:    0.15,
		MutationMethod:  domain.MutationSwap,
		ElitismRate:     0.1,
		TardinessWeight: 0.5,
		UseAdaptive:     true,
		AdaptiveWindow:  15,
	}
}
