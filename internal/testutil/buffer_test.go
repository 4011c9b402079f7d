package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadSafeBuffer(t *testing.T) {
	t.Parallel()

	buf := &ThreadSafeBuffer{}
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = fmt.Fprintf(buf, "line %d\n", i)
		}()
	}
	wg.Wait()

	assert.Len(t, buf.Lines(), 10)
	buf.Reset()
	assert.Empty(t, buf.String())
	assert.Empty(t, buf.Lines())
}
