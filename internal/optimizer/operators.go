package optimizer

import "math/rand"

// individual: 种群中的一个个体，染色体是所有工件 ID 的一个排列
// （第一阶段的加工顺序），每一代被替换
type individual struct {
	chromosome []int64
	fitness    float64
	makespan   float64
	tardiness  float64
}

func (ind *individual) clone() *individual {
	chromosome := make([]int64, len(ind.chromosome))
	copy(chromosome, ind.chromosome)
	return &individual{
		chromosome: chromosome,
		fitness:    ind.fitness,
		makespan:   ind.makespan,
		tardiness:  ind.tardiness,
	}
}

// randomPermutation 用 Fisher-Yates 洗牌生成 ids 的一个随机排列
func randomPermutation(ids []int64, rng *rand.Rand) []int64 {
	perm := make([]int64, len(ids))
	copy(perm, ids)
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// tournamentSelect 锦标赛选择：随机抽 size 个个体，返回其中适应度最低的
func tournamentSelect(pop []*individual, size int, rng *rand.Rand) *individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < size; i++ {
		cand := pop[rng.Intn(len(pop))]
		if cand.fitness < best.fitness {
			best = cand
		}
	}
	return best
}

// orderCrossover 顺序交叉（OX）：从 p1 复制一段连续片段，
// 其余位置按 p2 中的相对顺序填充，跳过已经放入的基因
func orderCrossover(p1, p2 []int64, rng *rand.Rand) []int64 {
	n := len(p1)
	child := make([]int64, n)
	if n < 2 {
		copy(child, p1)
		return child
	}

	a := rng.Intn(n)
	b := rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	if a == b {
		// 保证片段长度不为 0
		b = (a + 1) % n
		if a > b {
			a, b = b, a
		}
	}

	used := make(map[int64]bool, b-a)
	for i := a; i < b; i++ {
		child[i] = p1[i]
		used[p1[i]] = true
	}

	pos := b % n
	for i := 0; i < n; i++ {
		gene := p2[(b+i)%n]
		if used[gene] {
			continue
		}
		child[pos] = gene
		pos = (pos + 1) % n
		for pos >= a && pos < b {
			pos = (pos + 1) % n
		}
	}

	return child
}

// mutateSwap 交换变异：随机交换两个不同位置的基因
func mutateSwap(chromosome []int64, rng *rand.Rand) {
	if len(chromosome) < 2 {
		return
	}
	i := rng.Intn(len(chromosome))
	j := rng.Intn(len(chromosome) - 1)
	if j >= i {
		j++
	}
	chromosome[i], chromosome[j] = chromosome[j], chromosome[i]
}

// mutateInsert 插入变异：取出一个基因再插入到另一个位置
func mutateInsert(chromosome []int64, rng *rand.Rand) {
	if len(chromosome) < 2 {
		return
	}
	from := rng.Intn(len(chromosome))
	to := rng.Intn(len(chromosome) - 1)
	if to >= from {
		to++
	}

	gene := chromosome[from]
	if from < to {
		copy(chromosome[from:], chromosome[from+1:to+1])
	} else {
		copy(chromosome[to+1:], chromosome[to:from])
	}
	chromosome[to] = gene
}
