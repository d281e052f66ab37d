package simulator

const noneID = int32(-1)

// machine: 某个阶段的一台机器，状态只在一次仿真运行内被修改
type machine struct {
	id          int32
	stage       int32
	kit         int32 // 当前装着的换模套件所属的族，没有则为 noneID
	availableAt float64
	currentJob  int     // 正在加工的工件下标，没有则为 -1
	busyTime    float64 // 换模加加工的累计占用时间，用于算利用率
}

// setupKit: 某个族的换模套件。核心约束：任一时刻最多只有一台机器持有它
type setupKit struct {
	family      int32
	machineID   int32 // 持有它的机器，没有则为 noneID
	availableAt float64
}

func newMachines(count int, stage int32, idOffset int32) []*machine {
	machines := make([]*machine, count)
	for i := range machines {
		machines[i] = &machine{
			id:         idOffset + int32(i),
			stage:      stage,
			kit:        noneID,
			currentJob: -1,
		}
	}
	return machines
}
