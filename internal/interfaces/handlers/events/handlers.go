package events

import (
	"bufio"
	"fmt"
	"time"

	"hostel-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// EventName is the server-sent event emitted whenever the housing state changes.
const EventName = "storage-update"

const defaultHeartbeat = 15 * time.Second

// Source delivers every new snapshot. *housing.Store satisfies it.
type Source interface {
	Subscribe(fn func(domain.Snapshot)) (unsubscribe func())
}

// Handlers streams change signals to browsers so open views refetch. Bursts of changes between
// two writes collapse into one event.
type Handlers struct {
	Source    Source
	Heartbeat time.Duration
	// Done ends every open stream when closed (server shutdown).
	Done <-chan struct{}
}

// GET /api/v1/events
func (h *Handlers) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	signals := make(chan struct{}, 1)
	unsubscribe := h.Source.Subscribe(func(domain.Snapshot) {
		select {
		case signals <- struct{}{}:
		default:
		}
	})

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	done := h.Done
	remote := c.IP()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		fmt.Fprint(w, "retry: 3000\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case <-done:
				return
			case <-signals:
				fmt.Fprintf(w, "event: %s\ndata: {}\n\n", EventName)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				log.Debug().Str("remote", remote).Err(err).Msg("Event stream closed by client")
				return
			}
		}
	}))
	return nil
}
