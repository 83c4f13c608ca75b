package pipeline

import (
	"time"
	"treesync/internal/model"
)

// Debounce holds events until delay has passed without a new one, then
// emits the latest event of every path in first-seen order. Closing inCh
// flushes what is pending.
func Debounce(inCh <-chan model.FileEvent, delay time.Duration) <-chan model.FileEvent {
	outCh := make(chan model.FileEvent, cap(inCh))

	go func() {
		defer close(outCh)

		events := make(map[string]model.FileEvent)
		var order []string

		flush := func() {
			for _, path := range order {
				outCh <- events[path]
			}
			clear(events)
			order = order[:0]
		}

		timer := time.NewTimer(delay)
		timer.Stop()
		var fire <-chan time.Time

		for {
			select {
			case event, ok := <-inCh:
				if !ok {
					timer.Stop()
					flush()
					return
				}

				if _, seen := events[event.Path]; !seen {
					order = append(order, event.Path)
				}
				events[event.Path] = event

				timer.Reset(delay)
				fire = timer.C

			case <-fire:
				fire = nil
				flush()
			}
		}
	}()

	return outCh
}
