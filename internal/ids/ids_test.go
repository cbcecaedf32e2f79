package ids

import (
	"sync"
	"testing"
)

func TestNextUniqueAcrossGoroutines(t *testing.T) {
	const workers, per = 8, 200
	var (
		mu   sync.Mutex
		seen = make(map[uint32]bool)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id := Next()
				mu.Lock()
				if id == 0 || seen[id] {
					t.Errorf("Next() returned duplicate or zero id %d", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*per {
		t.Errorf("got %d ids, want %d", len(seen), workers*per)
	}
}
