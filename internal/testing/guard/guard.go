// Package guard switches the process into test mode when imported, so binaries
// exercised from tests skip listening and mock-data warmup.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("INSIGHTDASH_TEST_MODE") == "" {
			_ = os.Setenv("INSIGHTDASH_TEST_MODE", "1")
		}
	})
}
