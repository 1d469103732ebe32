package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverallNeverExceedsTotal(t *testing.T) {
	o := NewOverall(50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				o.Advance()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), o.Done())
	assert.Equal(t, int64(50), o.Total())

	done, ok := o.Advance()
	assert.False(t, ok)
	assert.Equal(t, int64(50), done)
}

func TestOverallMonotonic(t *testing.T) {
	o := NewOverall(1000)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					o.Advance()
				}
			}
		}()
	}

	prev := int64(0)
	for i := 0; i < 10000; i++ {
		cur := o.Done()
		if cur < prev || cur > o.Total() {
			t.Fatalf("counter moved from %d to %d", prev, cur)
		}
		prev = cur
	}
	close(stop)
	wg.Wait()
}

func TestCrop(t *testing.T) {
	assert.Equal(t, "short.mp4", Crop("short.mp4", 20))
	assert.Equal(t, "…/output/my-talk.mp4", Crop("/home/user/output/my-talk.mp4", 20))
	assert.Len(t, []rune(Crop("/home/user/output/my-talk.mp4", 20)), 20)
	assert.Equal(t, "…", Crop("abc", 0))
}
