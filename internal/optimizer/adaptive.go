package optimizer

import "math"

// 多样性估计时最多取多少个个体算两两之间的汉明距离，
// 防止大种群下的平方开销
const diversitySampleSize = 12

// populationDiversity 估计种群多样性，范围 [0, 1]：
// 适应度标准差（按均值归一化）和抽样个体间的平均汉明距离各占一半
func populationDiversity(pop []*individual) float64 {
	if len(pop) < 2 {
		return 0
	}

	mean := 0.0
	for _, ind := range pop {
		mean += ind.fitness
	}
	mean /= float64(len(pop))

	variance := 0.0
	for _, ind := range pop {
		variance += math.Pow(ind.fitness-mean, 2)
	}
	variance /= float64(len(pop))

	fitnessSpread := 0.0
	if mean != 0 {
		fitnessSpread = math.Min(math.Sqrt(variance)/math.Abs(mean), 1)
	}

	// 均匀抽样，保证确定性
	step := len(pop) / diversitySampleSize
	if step < 1 {
		step = 1
	}
	sample := make([]*individual, 0, diversitySampleSize)
	for i := 0; i < len(pop) && len(sample) < diversitySampleSize; i += step {
		sample = append(sample, pop[i])
	}

	pairs := 0
	hammingSum := 0.0
	for i := 0; i < len(sample); i++ {
		for j := i + 1; j < len(sample); j++ {
			hammingSum += hammingDistance(sample[i].chromosome, sample[j].chromosome)
			pairs++
		}
	}
	meanHamming := 0.0
	if pairs > 0 {
		meanHamming = hammingSum / float64(pairs)
	}

	return 0.5*fitnessSpread + 0.5*meanHamming
}

// hammingDistance 返回两条染色体不同位置的比例，范围 [0, 1]
func hammingDistance(a, b []int64) float64 {
	if len(a) == 0 {
		return 0
	}
	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	return float64(diff) / float64(len(a))
}

// stagnationRatio 返回最近 window 代中没有明显改进
// （最优适应度改进不超过 0.1%）的代数占比
func stagnationRatio(history []float64, window int) float64 {
	if len(history) < 2 || window < 1 {
		return 0
	}

	start := len(history) - window
	if start < 1 {
		start = 1
	}

	stagnant := 0
	checked := 0
	for i := start; i < len(history); i++ {
		prev := history[i-1]
		improvement := prev - history[i]
		if prev == 0 || improvement/math.Abs(prev) <= 0.001 {
			stagnant++
		}
		checked++
	}

	if checked == 0 {
		return 0
	}
	return float64(stagnant) / float64(checked)
}

// adaptMutationRate 按种群多样性、停滞程度和迭代进度调节变异率：
// 多样性低或停滞久时加大变异，后期逐渐收敛，结果始终钳制在 [0.01, 0.5]
func adaptMutationRate(baseRate float64, pop []*individual, history []float64, window, generation, generations int) float64 {
	diversity := populationDiversity(pop)
	stagnation := stagnationRatio(history, window)

	progress := 0.0
	if generations > 0 {
		progress = float64(generation) / float64(generations)
	}

	rate := baseRate * (1.5 - diversity) * (1 + 0.5*stagnation) * (1 - 0.3*progress)

	if rate < 0.01 {
		rate = 0.01
	}
	if rate > 0.5 {
		rate = 0.5
	}
	return rate
}
