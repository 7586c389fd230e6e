package fetch

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spacewatch/checker/internal/model"
)

// notification is one entry from the products/notifications.json feed. NOAA
// multiplexes geomagnetic storms, SEP events, high speed streams, IPS
// (interplanetary shocks) and magnetopause crossings through the same
// message stream, distinguished by messageType and a free-text message body.
type notification struct {
	MessageID   string `json:"message_id"`
	MessageType string `json:"message_type"`
	IssueTime   string `json:"issue_datetime"`
	Message     string `json:"message"`
}

func (n notification) issuedAt() time.Time {
	t, err := time.Parse("2006-01-02 15:04:05.000", n.IssueTime)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, n.IssueTime); err2 == nil {
			return t2
		}
		return time.Time{}
	}
	return t
}

// EventsResult holds every notification-derived event list the snapshot
// needs. A single fetch of the shared notifications feed backs all five
// event kinds, matching how NOAA actually publishes them.
type EventsResult struct {
	Storms []model.Storm
	SEPs   []model.SEP
	HSS    []model.HSS
	IPS    []model.IPS
	MPC    []model.MPC
}

// FetchNotifications retrieves and classifies the shared DONKI-style
// notification stream into storms, SEPs, HSS, IPS and MPC events.
func (r *Registry) FetchNotifications(ctx context.Context) Outcome[EventsResult] {
	return run(ctx, "notifications", r.Timeout, func(ctx context.Context) (EventsResult, error) {
		var notes []notification
		if err := getJSON(ctx, r.Client, r.Endpoints.Notifications, &notes); err != nil {
			return EventsResult{}, err
		}

		var result EventsResult
		for _, n := range notes {
			observed := n.issuedAt()
			switch classifyMessageType(n.MessageType) {
			case "storm":
				result.Storms = append(result.Storms, model.Storm{
					ID:       n.MessageID,
					KpIndex:  extractKpFromMessage(n.Message),
					Observed: observed,
				})
			case "sep":
				result.SEPs = append(result.SEPs, model.SEP{ID: n.MessageID, Observed: observed})
			case "hss":
				result.HSS = append(result.HSS, model.HSS{ID: n.MessageID, Observed: observed})
			case "ips":
				result.IPS = append(result.IPS, model.IPS{ID: n.MessageID, Observed: observed})
			case "mpc":
				result.MPC = append(result.MPC, model.MPC{ID: n.MessageID, Observed: observed})
			}
		}
		return result, nil
	})
}

// classifyMessageType maps NOAA's message_type codes to the event kinds the
// snapshot tracks. Unrecognized types are dropped rather than guessed at.
func classifyMessageType(messageType string) string {
	t := strings.ToUpper(messageType)
	switch {
	case strings.Contains(t, "GEOMAGNETIC") || strings.Contains(t, "GST"):
		return "storm"
	case strings.Contains(t, "SEP") || strings.Contains(t, "PROTON"):
		return "sep"
	case strings.Contains(t, "HSS") || strings.Contains(t, "STREAM"):
		return "hss"
	case strings.Contains(t, "IPS") || strings.Contains(t, "SHOCK"):
		return "ips"
	case strings.Contains(t, "MPC") || strings.Contains(t, "MAGNETOPAUSE"):
		return "mpc"
	default:
		return ""
	}
}

// extractKpFromMessage pulls a "Kp=N" style token out of a free-text
// notification body; returns 0 if none is present.
func extractKpFromMessage(message string) float64 {
	idx := strings.Index(message, "Kp=")
	if idx < 0 {
		return 0
	}
	rest := message[idx+len("Kp="):]
	end := 0
	for end < len(rest) && (rest[end] == '.' || (rest[end] >= '0' && rest[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
