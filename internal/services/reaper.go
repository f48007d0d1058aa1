package services

import (
	"log/slog"
	"time"
)

const reapPollInterval = time.Minute

// SessionReaper disposes conversations that have been idle for longer than
// the configured TTL.
type SessionReaper struct {
	assistant *AssistantService
	ttl       time.Duration
	interval  time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	done      chan struct{}
}

func NewSessionReaper(assistant *AssistantService, ttl time.Duration) *SessionReaper {
	return &SessionReaper{
		assistant: assistant,
		ttl:       ttl,
		interval:  reapPollInterval,
		now:       time.Now,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (r *SessionReaper) Start() {
	if r.assistant == nil || r.ttl <= 0 {
		close(r.done)
		return
	}

	go r.loop()

	slog.Info("session reaper started", "idle_ttl", r.ttl, "interval", r.interval)
}

// Stop ends the loop and waits for it to return.
func (r *SessionReaper) Stop() {
	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}
	<-r.done
}

func (r *SessionReaper) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.RunOnce()
		}
	}
}

func (r *SessionReaper) RunOnce() int {
	n := r.assistant.ReapIdle(r.now(), r.ttl)
	if n > 0 {
		slog.Info("reaped idle sessions", "count", n, "active_sessions", r.assistant.Count())
	}
	return n
}
