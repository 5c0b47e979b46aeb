package live

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jlindmark/floorlive/internal/models"
)

// Teardown can land while the subscription callback is mid-send; the
// channel wrapper must absorb that instead of panicking.
func TestSnapshotChanCloseDuringSends(t *testing.T) {
	c := newSnapshotChan(1)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.send(models.Match{Time: "05:00"})
			}
		}()
	}

	// Drain concurrently so senders make progress until the close.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range c.ch {
		}
	}()

	c.close()
	wg.Wait()
	<-drained

	assert.False(t, c.send(models.Match{Time: "05:01"}), "send after close must report a drop")
}

func TestSnapshotChanCloseIsIdempotent(t *testing.T) {
	c := newSnapshotChan(1)
	c.close()
	c.close()

	_, ok := <-c.ch
	assert.False(t, ok)
}

func TestSnapshotChanDropsWhenFull(t *testing.T) {
	c := newSnapshotChan(1)
	assert.True(t, c.send(models.Match{Time: "01:00"}))
	assert.False(t, c.send(models.Match{Time: "01:01"}), "full channel drops instead of blocking the dispatcher")

	got := <-c.ch
	assert.Equal(t, "01:00", got.Time)
}
