// Package dispatch implements the dispatcher (spec.md §4.E): routes each
// alert by urgency to one or more delivery channels, fire-and-try — a
// failing channel is logged and never aborts the others. Exactly one info
// alert is dispatched alone; two or more are merged into a single synthetic
// "N Space Weather Updates" alert before being sent.
//
// Grounded on the teacher's server/internal/alerts/webhook.go (per-type
// send functions dispatched from a single deliver loop, logged individually,
// never fatal) generalized from a fixed slack/teams/pagerduty/http set to an
// id-routed channel registry, since spec.md §6 identifies channels by
// arbitrary string id (signal, desktop) rather than by webhook vendor.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacewatch/checker/internal/config"
	"github.com/spacewatch/checker/internal/model"
)

// Channel is an injectable delivery sink, matching spec.md §6: "each is an
// injectable sink taking (alert) -> void". Send's error is logged by the
// dispatcher and never propagated further.
type Channel interface {
	Send(ctx context.Context, a model.Alert) error
}

// Dispatch routes every alert to its urgency's configured channels and
// returns the post-batch list it attempted to send (after info-batching),
// whether or not every channel delivered it. internal/checker uses the
// return only for logging and records the pre-batch alerts in alert
// history. Cooldown advancement is the caller's concern —
// spec.md §7 records cooldown for a type regardless of per-channel delivery
// success, so it must not depend on this function's return value alone.
func Dispatch(ctx context.Context, alerts []model.Alert, cfg *config.Config, channels map[string]Channel) []model.Alert {
	toSend := batchInfo(alerts)

	for _, a := range toSend {
		ids := cfg.Channels[string(a.Urgency)]
		for _, id := range ids {
			ch, ok := channels[id]
			if !ok {
				slog.Warn("dispatch: unknown channel id — skipping", "channel", id, "alertType", a.Type)
				continue
			}
			if err := ch.Send(ctx, a); err != nil {
				slog.Error("dispatch: channel delivery failed", "channel", id, "alertType", a.Type, "err", err)
				continue
			}
			slog.Info("dispatch: alert delivered", "channel", id, "alertType", a.Type, "urgency", a.Urgency)
		}
	}

	return toSend
}

// batchInfo implements spec.md §4.E's info-batching rule: a lone info alert
// passes through unchanged; two or more are merged into one synthetic alert.
func batchInfo(alerts []model.Alert) []model.Alert {
	var infos []model.Alert
	var rest []model.Alert

	for _, a := range alerts {
		if a.Urgency == model.UrgencyInfo {
			infos = append(infos, a)
		} else {
			rest = append(rest, a)
		}
	}

	switch len(infos) {
	case 0:
		return rest
	case 1:
		return append(rest, infos[0])
	default:
		return append(rest, mergeInfoAlerts(infos))
	}
}

func mergeInfoAlerts(infos []model.Alert) model.Alert {
	titles := make([]string, 0, len(infos))
	for _, a := range infos {
		titles = append(titles, a.Title)
	}

	return model.Alert{
		ID:        fmt.Sprintf("info-batch-%d", infos[0].Timestamp.UnixNano()),
		Type:      "info-batch",
		Urgency:   model.UrgencyInfo,
		Title:     fmt.Sprintf("%d Space Weather Updates", len(infos)),
		Body:      strings.Join(titles, " · "),
		Timestamp: infos[0].Timestamp,
	}
}
