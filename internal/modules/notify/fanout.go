// README: Settle-all notification fan-out with per-recipient failure isolation.
package notify

import (
	"context"
	"log"
	"sync"
)

// Message is one pending push delivery.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// FanOut delivers every message concurrently and waits for all attempts to
// settle. A failed send is logged and never aborts the rest of the batch.
// Returns the number of successful deliveries.
func FanOut(ctx context.Context, gw Gateway, msgs []Message) int {
	if len(msgs) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	delivered := 0

	for _, m := range msgs {
		wg.Add(1)
		go func(m Message) {
			defer wg.Done()
			if err := gw.Send(ctx, m.Token, m.Title, m.Body, m.Data); err != nil {
				log.Printf("notify: send to %s failed: %v", m.Token, err)
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(m)
	}

	wg.Wait()
	return delivered
}
