package nudbconfig

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSettings_ReturnsSameInstance verifies the singleton contract: repeated
// calls hand back the identical Config.
func TestSettings_ReturnsSameInstance(t *testing.T) {
	first, err := Settings()
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := Settings()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

// TestSettings_ConcurrentFirstUse verifies initialization is safe and
// produces one instance even when many goroutines race on first access.
func TestSettings_ConcurrentFirstUse(t *testing.T) {
	const goroutines = 16

	results := make([]*Config, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			cfg, err := Settings()
			assert.NoError(t, err)
			results[i] = cfg
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, results[0], results[i])
	}
}

// TestSettings_EqualsFreshLoad verifies the singleton tree matches an
// independently loaded one.
func TestSettings_EqualsFreshLoad(t *testing.T) {
	singleton, err := Settings()
	require.NoError(t, err)

	fresh, err := Load()
	require.NoError(t, err)

	assert.True(t, singleton.Tree().Equal(fresh.Tree()))
}
