package dispatch

import (
	"context"
	"log/slog"

	"github.com/spacewatch/checker/internal/model"
)

// LogChannel is the default "desktop" channel sink. spec.md §1 scopes actual
// desktop/SMS delivery transports out of the core as external collaborators
// ("the core treats ... delivery as a function taking an alert and a
// routing table") — this channel is that boundary function, recording the
// alert structurally so an external notifier can tail it.
type LogChannel struct {
	Logger *slog.Logger
}

// NewLogChannel builds a LogChannel writing through the default slog logger.
func NewLogChannel() *LogChannel {
	return &LogChannel{Logger: slog.Default()}
}

func (l *LogChannel) Send(_ context.Context, a model.Alert) error {
	l.Logger.Info("alert",
		"type", a.Type,
		"urgency", string(a.Urgency),
		"title", a.Title,
		"body", a.Body,
		"timestamp", a.Timestamp,
	)
	return nil
}
