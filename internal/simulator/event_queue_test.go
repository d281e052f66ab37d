package simulator

import "testing"

func TestEventQueuePopOrder(t *testing.T) {
	q := &eventQueue{}

	// 乱序插入，弹出时必须按时间升序
	q.push(event{time: 30, typ: eventStage1Complete})
	q.push(event{time: 10, typ: eventSetupStart})
	q.push(event{time: 20, typ: eventJobStart})
	q.push(event{time: 5, typ: eventStage2Complete})

	wantTimes := []float64{5, 10, 20, 30}
	for _, want := range wantTimes {
		ev, ok := q.pop()
		if !ok {
			t.Fatalf("队列提前为空，期望弹出时间 %v 的事件", want)
		}
		if ev.time != want {
			t.Errorf("弹出顺序错误：期望时间 %v，得到 %v", want, ev.time)
		}
	}

	if !q.empty() {
		t.Errorf("所有事件弹出后队列应该为空")
	}
}

func TestEventQueueTieBreakByType(t *testing.T) {
	q := &eventQueue{}

	// 同一时刻的事件按类型优先级处理：换模开始最先，第二阶段完工最后
	q.push(event{time: 100, typ: eventStage2Complete})
	q.push(event{time: 100, typ: eventSetupStart})
	q.push(event{time: 100, typ: eventStage1Complete})
	q.push(event{time: 100, typ: eventJobStart})
	q.push(event{time: 100, typ: eventSetupEnd})

	wantTypes := []eventType{
		eventSetupStart,
		eventSetupEnd,
		eventJobStart,
		eventStage1Complete,
		eventStage2Complete,
	}
	for i, want := range wantTypes {
		ev, ok := q.pop()
		if !ok {
			t.Fatalf("队列提前为空，第 %d 个事件缺失", i)
		}
		if ev.typ != want {
			t.Errorf("第 %d 个事件类型错误：期望 %d，得到 %d", i, want, ev.typ)
		}
	}
}

func TestEventQueuePopEmpty(t *testing.T) {
	q := &eventQueue{}

	if _, ok := q.pop(); ok {
		t.Fatalf("空队列 pop 应该返回 false")
	}

	q.push(event{time: 1})
	if _, ok := q.pop(); !ok {
		t.Fatalf("非空队列 pop 应该返回事件")
	}
	if _, ok := q.pop(); ok {
		t.Fatalf("弹空之后 pop 应该返回 false")
	}
}
