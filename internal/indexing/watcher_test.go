package indexing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/lri/testhelpers"
)

func TestEventDebouncer_BatchesBurst(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string
	d := newEventDebouncer(20*time.Millisecond, func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
	})
	defer d.stop()

	d.addEvent("/p/a.rb")
	d.addEvent("/p/b.rb")
	d.addEvent("/p/a.rb")

	testhelpers.WaitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"/p/a.rb", "/p/b.rb"}, batches[0])
}

func TestEventDebouncer_StopDropsPending(t *testing.T) {
	called := make(chan struct{}, 1)
	d := newEventDebouncer(time.Hour, func([]string) { called <- struct{}{} })

	d.addEvent("/p/a.rb")
	d.stop()
	d.addEvent("/p/b.rb")
	d.flush()

	select {
	case <-called:
		t.Fatal("flush ran after stop")
	default:
	}
}
