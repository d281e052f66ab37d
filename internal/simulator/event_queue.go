package simulator

type eventType int

// 事件类型同时定义了同一时刻多个事件的处理顺序：
// 先处理换模开始，最后处理第二阶段完工
const (
	eventSetupStart eventType = iota
	eventSetupEnd
	eventJobStart
	eventStage1Complete
	eventStage2Complete
)

type event struct {
	time      float64
	typ       eventType
	jobIndex  int
	machineID int32
}

// before 判断事件 e 是否应该排在 other 之前，
// 时间相同时按事件类型的固定优先级决定
func (e event) before(other event) bool {
	if e.time != other.time {
		return e.time < other.time
	}
	return e.typ < other.typ
}

// eventQueue: 按时间升序保存仿真事件的队列，是仿真时钟的驱动者。
// 内部用有序切片实现，插入时直接找到正确位置
type eventQueue struct {
	items []event
}

func (q *eventQueue) push(e event) {
	i := len(q.items)
	for i > 0 && e.before(q.items[i-1]) {
		i--
	}
	q.items = append(q.items, event{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = e
}

// pop 弹出最早的事件，队列为空时返回 false，
// 这是仿真主循环的正常终止信号而不是错误
func (q *eventQueue) pop() (event, bool) {
	if len(q.items) == 0 {
		return event{}, false
	}
	e := q.items[0]
	q.items = q.items[1:]
	return e, true
}

func (q *eventQueue) empty() bool {
	return len(q.items) == 0
}
