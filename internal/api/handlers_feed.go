package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/khare/internal/logging"
	"github.com/terraincognita07/khare/internal/services"
)

const ProjectFeedPath = "/api/projects/feed"

// ProjectFeed streams the caller's project changes as Server-Sent Events
// until the client goes away or the handler shuts down.
func (handler *Handler) ProjectFeed(c *fiber.Ctx) error {
	select {
	case <-handler.closing:
		return apiError(c, fiber.StatusServiceUnavailable, "server is shutting down")
	default:
	}

	viewer := currentViewer(c)
	changes, cancel := handler.feed.Subscribe(viewer)
	logger := logging.FromContext(c.UserContext()).With("account_id", viewer.AccountID)
	heartbeat := handler.feedHeartbeat
	closing := handler.closing

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		logger.Debug("project feed opened")
		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-closing:
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				if err := writeChangeEvent(w, change); err != nil {
					logger.Warn("project feed event dropped", "error", err)
					continue
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				logger.Debug("project feed closed", "error", err)
				return
			}
		}
	})
	return nil
}

func writeChangeEvent(w *bufio.Writer, change services.ProjectChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", strings.ToLower(string(change.Type)), payload)
	return err
}

// Shutdown ends every open project feed stream. It is safe to call twice.
func (handler *Handler) Shutdown() {
	handler.closeOnce.Do(func() {
		close(handler.closing)
	})
}
