package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			assert.True(t, shouldSuppressHeader(ctx), "Goroutine %d: shouldSuppressHeader should be true", i)
		})
	}
	wg.Wait()
}

// TestContextIsolation tests that different contexts maintain isolation.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	suppressed := WithSuppressHeader(base)

	assert.False(t, shouldSuppressHeader(base))
	assert.True(t, shouldSuppressHeader(suppressed))
	assert.False(t, shouldSuppressHeader(context.WithValue(base, suppressHeaderKey, "yes")))
}
