package storage

import (
	"context"
	"log"
	"time"

	"github.com/lib/pq"
)

// ChangeListener turns order_changes notifications into a stream of order
// ids. An empty id is sent after a reconnect, when individual changes may
// have been missed.
type ChangeListener struct {
	listener *pq.Listener
}

func NewChangeListener(dsn string) *ChangeListener {
	report := func(event pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("[order-svc] order change listener: %v", err)
		}
	}
	return &ChangeListener{
		listener: pq.NewListener(dsn, 10*time.Second, time.Minute, report),
	}
}

func (c *ChangeListener) Listen(ctx context.Context) (<-chan string, error) {
	if err := c.listener.Listen(OrderChangesChannel); err != nil {
		return nil, err
	}

	changes := make(chan string, 64)
	go func() {
		defer close(changes)
		ping := time.NewTicker(90 * time.Second)
		defer ping.Stop()

		for {
			var id string
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				go c.listener.Ping()
				continue
			case n, ok := <-c.listener.Notify:
				if !ok {
					return
				}
				// nil marks a re-established connection
				if n != nil {
					id = n.Extra
				}
			}

			select {
			case changes <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	return changes, nil
}

func (c *ChangeListener) Close() error {
	return c.listener.Close()
}
