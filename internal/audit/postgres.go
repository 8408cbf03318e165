package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// PGRecorder writes audit events to the audit_logs table from a background
// worker. Enqueue drops events when the buffer is full rather than blocking
// a request; losing an audit row is preferable to stalling a login.
type PGRecorder struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
	events chan Event
	done   chan struct{}
}

func NewPGRecorder(pool *pgxpool.Pool, logger *logrus.Logger, buffer int) *PGRecorder {
	if buffer <= 0 {
		buffer = 1024
	}
	r := &PGRecorder{
		pool:   pool,
		logger: logger,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *PGRecorder) Enqueue(ev Event) {
	select {
	case r.events <- ev:
	default:
		r.logger.WithField("action", ev.Action).Warn("audit buffer full, event dropped")
	}
}

// Close stops the worker after draining buffered events.
func (r *PGRecorder) Close() {
	close(r.events)
	<-r.done
}

func (r *PGRecorder) run() {
	defer close(r.done)
	for ev := range r.events {
		r.insert(ev)
	}
}

func (r *PGRecorder) insert(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var md []byte
	if ev.Metadata != nil {
		md, _ = json.Marshal(ev.Metadata)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
	`, ev.UserID, ev.Email, ev.Action, ev.IP, ev.UserAgent, md)
	if err != nil {
		r.logger.WithError(err).WithField("action", ev.Action).Warn("audit insert failed")
	}
}
