package orchestration

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNotifierRunsCallbacksInOrder(t *testing.T) {
	n := newNotifier()
	defer n.close()

	var mu sync.Mutex
	var got []int
	record := func(i int) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, i)
		}
	}

	n.post(record(1))
	n.post(func() {
		record(2)()
		n.post(record(4))
	})
	n.post(record(3))
	n.start()

	waitForCondition(t, time.Second, "callbacks to run", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 4
	})
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]int{1, 2, 3, 4}, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestNotifierSurvivesPanickingCallback(t *testing.T) {
	n := newNotifier()
	defer n.close()
	n.start()

	done := make(chan struct{})
	n.post(func() { panic("boom") })
	n.post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected callbacks after a panic to run")
	}
}

func TestNotifierCloseDropsPending(t *testing.T) {
	n := newNotifier()
	ran := false
	n.post(func() { ran = true })
	n.close()
	n.start()
	n.post(func() { ran = true })

	<-n.done
	if ran {
		t.Fatalf("expected callbacks after close to be dropped")
	}
}
