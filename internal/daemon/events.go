package daemon

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/typdocs/internal/errors"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
)

// BuildEvent is published after each version conversion completes.
type BuildEvent struct {
	BuildID     string    `json:"build_id"`
	Version     string    `json:"version"`
	Pages       int       `json:"pages"`
	Failures    int       `json:"failures"`
	Success     bool      `json:"success"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher emits build events over NATS. A nil Publisher is valid and
// publishes nothing.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to NATS. Returns nil when url is empty, meaning
// events are disabled.
func NewPublisher(url, subject string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := nats.Connect(url, nats.Name("typdocs"))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to connect to NATS").
			WithContext("url", url)
	}

	slog.Info("NATS event publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &Publisher{conn: conn, subject: subject}, nil
}

// PublishBuildCompleted sends a build event. Publish failures are logged, not
// returned; events are advisory.
func (p *Publisher) PublishBuildCompleted(event BuildEvent) {
	if p == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal build event", logfields.Error(err))
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		slog.Error("Failed to publish build event", logfields.Error(err), logfields.Version(event.Version))
		return
	}
	slog.Debug("Published build event", logfields.Version(event.Version), logfields.BuildID(event.BuildID))
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		slog.Warn("Failed to drain NATS connection", logfields.Error(err))
	}
}
