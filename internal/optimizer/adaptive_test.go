package optimizer

import "testing"

func uniformPopulation(n int, fitness float64) []*individual {
	pop := make([]*individual, n)
	for i := range pop {
		pop[i] = &individual{chromosome: []int64{1, 2, 3, 4}, fitness: fitness}
	}
	return pop
}

func TestPopulationDiversityUniform(t *testing.T) {
	// 完全一样的种群多样性为 0
	pop := uniformPopulation(30, 42)
	if d := populationDiversity(pop); d != 0 {
		t.Errorf("同质种群的多样性应该为 0，得到 %v", d)
	}
}

func TestPopulationDiversityRange(t *testing.T) {
	pop := []*individual{
		{chromosome: []int64{1, 2, 3, 4}, fitness: 10},
		{chromosome: []int64{4, 3, 2, 1}, fitness: 200},
		{chromosome: []int64{2, 1, 4, 3}, fitness: 50},
		{chromosome: []int64{3, 4, 1, 2}, fitness: 120},
	}

	d := populationDiversity(pop)
	if d <= 0 || d > 1 {
		t.Errorf("多样性 %v 超出 (0, 1] 范围", d)
	}
}

func TestStagnationRatio(t *testing.T) {
	// 持续改进的历史没有停滞
	improving := []float64{100, 90, 80, 70, 60}
	if s := stagnationRatio(improving, 4); s != 0 {
		t.Errorf("持续改进的历史停滞占比应该为 0，得到 %v", s)
	}

	// 完全停滞的历史占比为 1
	flat := []float64{100, 100, 100, 100, 100}
	if s := stagnationRatio(flat, 4); s != 1 {
		t.Errorf("完全停滞的历史停滞占比应该为 1，得到 %v", s)
	}

	// 历史太短时不做判断
	if s := stagnationRatio([]float64{100}, 4); s != 0 {
		t.Errorf("单条历史不应该报告停滞，得到 %v", s)
	}
}

func TestAdaptMutationRateClamping(t *testing.T) {
	pop := uniformPopulation(30, 42)
	flat := []float64{100, 100, 100, 100, 100, 100}

	// 多样性 0 加上完全停滞会推高变异率，但不能超过 0.5
	rate := adaptMutationRate(0.9, pop, flat, 5, 10, 100)
	if rate > 0.5 {
		t.Errorf("变异率 %v 超出上限 0.5", rate)
	}

	// 极小的基础变异率被抬到下限 0.01
	rate = adaptMutationRate(0.0001, pop, nil, 5, 90, 100)
	if rate < 0.01 {
		t.Errorf("变异率 %v 低于下限 0.01", rate)
	}
}

func TestAdaptMutationRateRaisesOnStagnation(t *testing.T) {
	pop := uniformPopulation(30, 42)
	improving := []float64{100, 80, 60, 40, 20, 10}
	flat := []float64{100, 100, 100, 100, 100, 100}

	active := adaptMutationRate(0.1, pop, improving, 5, 10, 100)
	stuck := adaptMutationRate(0.1, pop, flat, 5, 10, 100)

	if stuck <= active {
		t.Errorf("停滞时的变异率 %v 应该高于持续改进时的 %v", stuck, active)
	}
}
