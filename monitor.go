package spimotor

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mdouchement/logger"
)

// Hub fans status snapshots out to monitor watchers over a unix-socket SSE
// endpoint. The stream is read-only: there is no control surface here.
type Hub struct {
	events   chan hubEvent
	done     chan struct{}
	listener net.Listener
}

func NewHub(cfg Config) (*Hub, error) {
	h := &Hub{
		events: make(chan hubEvent, 10),
		done:   make(chan struct{}),
	}

	err := os.MkdirAll(filepath.Dir(cfg.Socket), 0o755)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}

	if _, err := os.Stat(cfg.Socket); err == nil {
		fmt.Printf("Removing existing %s\n", cfg.Socket)
		os.Remove(cfg.Socket)
	}
	h.listener, err = net.Listen("unix", cfg.Socket)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}

	return h, nil
}

// Publish queues a snapshot for delivery to every connected watcher. Once
// the hub shuts down it becomes a no-op, so publishers can keep running
// through teardown.
func (h *Hub) Publish(s Status) {
	h.send(hubEvent{name: hubUpdateStatus, status: s})
}

func (h *Hub) send(e hubEvent) {
	select {
	case h.events <- e:
	case <-h.done:
	}
}

func (h *Hub) Launch(ctx context.Context) {
	log := logger.LogWith(ctx)

	go h.eventLoop(ctx)

	http.HandleFunc("/monitor", h.monitor(log))
	go func() {
		for {
			log.Info("Starting HTTP server on ", h.listener.Addr().String())
			err := http.Serve(h.listener, nil)
			if err != nil {
				log.WithError(err).Error("Could not serve HTTP")
			}
			time.Sleep(2 * time.Second)
		}
	}()

	go func() {
		<-ctx.Done()
		if err := h.listener.Close(); err != nil {
			log.WithError(err).Error("Could not close socket listener")
		}
		if err := os.Remove(h.listener.Addr().String()); err != nil && !os.IsNotExist(err) {
			// listener.Close() should close the socket but ceinture et bretelles!
			log.WithError(err).Errorf("Could not remove socket %s", h.listener.Addr().String())
		}

		close(h.done)
	}()
}

func (h *Hub) eventLoop(ctx context.Context) {
	log := logger.LogWith(ctx)
	watchers := map[int64]chan<- []byte{}
	var latest Status

	for {
		var e hubEvent
		select {
		case <-h.done:
			for _, watcher := range watchers {
				close(watcher)
			}
			return
		case e = <-h.events:
		}

		switch e.name {
		case hubUpdateStatus:
			latest = e.status
			h.send(hubEvent{name: hubRefresh})
		case hubRefresh:
			payload, err := json.Marshal(latest)
			if err != nil {
				log.WithError(err).Error("Could not serialize status") // Should never happen
				continue
			}

			for _, watcher := range watchers {
				watcher <- payload
			}
		case hubWatch:
			watchers[e.monitorID] = e.monitor
			h.send(hubEvent{name: hubRefresh})
		case hubUnwatch:
			close(watchers[e.monitorID])
			delete(watchers, e.monitorID)
		}
	}
}

func (h *Hub) monitor(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Client connected")

		// Set http headers required for SSE.
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		disconnected := r.Context().Done()

		id := genID()
		ch := make(chan []byte, 20)
		h.events <- hubEvent{name: hubWatch, monitorID: id, monitor: ch}

		rc := http.NewResponseController(w)
		for {
			select {
			case <-disconnected:
				log.Info("Client disconnected")
				h.events <- hubEvent{name: hubUnwatch, monitorID: id}
				return
			case payload := <-ch:
				_, err := w.Write(append(payload, '\n', '\n'))
				if err != nil {
					log.WithError(err).Error("Could not write monitor SSE payload")
					return
				}

				err = rc.Flush()
				if err != nil {
					log.WithError(err).Error("Could not flush monitor SSE payload")
					return
				}
			}
		}
	}
}
