package dispatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spacewatch/checker/internal/config"
	"github.com/spacewatch/checker/internal/model"
)

type recordingChannel struct {
	sent []model.Alert
	fail bool
}

func (r *recordingChannel) Send(_ context.Context, a model.Alert) error {
	if r.fail {
		return errFail
	}
	r.sent = append(r.sent, a)
	return nil
}

type failErr string

func (e failErr) Error() string { return string(e) }

const errFail = failErr("channel unavailable")

func cfgWithChannels(t *testing.T, routing map[string][]string) *config.Config {
	t.Helper()
	return &config.Config{Channels: routing}
}

func TestDispatch_RoutesByUrgency(t *testing.T) {
	signal := &recordingChannel{}
	desktop := &recordingChannel{}
	cfg := cfgWithChannels(t, map[string][]string{
		"critical": {"signal", "desktop"},
		"high":     {"signal"},
	})
	channels := map[string]Channel{"signal": signal, "desktop": desktop}

	alerts := []model.Alert{
		{Type: model.TypeFlareX, Urgency: model.UrgencyCritical, Timestamp: time.Now()},
	}
	Dispatch(context.Background(), alerts, cfg, channels)

	if len(signal.sent) != 1 || len(desktop.sent) != 1 {
		t.Fatalf("critical alert should reach both signal and desktop, got signal=%d desktop=%d", len(signal.sent), len(desktop.sent))
	}
}

func TestDispatch_ChannelFailureDoesNotAbortOthers(t *testing.T) {
	failing := &recordingChannel{fail: true}
	ok := &recordingChannel{}
	cfg := cfgWithChannels(t, map[string][]string{"high": {"signal", "desktop"}})
	channels := map[string]Channel{"signal": failing, "desktop": ok}

	alerts := []model.Alert{{Type: model.TypeFlareM, Urgency: model.UrgencyHigh, Timestamp: time.Now()}}
	Dispatch(context.Background(), alerts, cfg, channels)

	if len(ok.sent) != 1 {
		t.Fatalf("desktop channel should still receive the alert despite signal failing, got %d", len(ok.sent))
	}
}

func TestDispatch_SingleInfoAlertDispatchedAlone(t *testing.T) {
	desktop := &recordingChannel{}
	cfg := cfgWithChannels(t, map[string][]string{"info": {"desktop"}})
	channels := map[string]Channel{"desktop": desktop}

	alerts := []model.Alert{{Type: model.TypeKpElevated, Urgency: model.UrgencyInfo, Title: "Kp Elevated", Timestamp: time.Now()}}
	sent := Dispatch(context.Background(), alerts, cfg, channels)

	if len(sent) != 1 || sent[0].Title != "Kp Elevated" {
		t.Fatalf("lone info alert should pass through unmerged, got %+v", sent)
	}
}

func TestDispatch_MultipleInfoAlertsBatched(t *testing.T) {
	desktop := &recordingChannel{}
	cfg := cfgWithChannels(t, map[string][]string{"info": {"desktop"}})
	channels := map[string]Channel{"desktop": desktop}

	now := time.Now()
	alerts := []model.Alert{
		{Type: model.TypeKpElevated, Urgency: model.UrgencyInfo, Title: "Kp Elevated", Timestamp: now},
		{Type: model.TypeActiveRegion, Urgency: model.UrgencyInfo, Title: "New Active Region 1002", Timestamp: now},
	}
	sent := Dispatch(context.Background(), alerts, cfg, channels)

	if len(sent) != 1 {
		t.Fatalf("expected exactly one batched alert, got %+v", sent)
	}
	if sent[0].Title != "2 Space Weather Updates" {
		t.Errorf("title = %q, want '2 Space Weather Updates'", sent[0].Title)
	}
	if sent[0].Body != "Kp Elevated · New Active Region 1002" {
		t.Errorf("body = %q", sent[0].Body)
	}
}

func TestWebhookChannel_Slack(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("TEST_WEBHOOK_URL", srv.URL+"/hooks/slack")
	target := config.WebhookTarget{ID: "signal", Type: "slack", URLEnv: "TEST_WEBHOOK_URL"}
	ch := NewWebhookChannel(target)
	ch.Client = srv.Client()

	err := ch.Send(context.Background(), model.Alert{Type: model.TypeFlareX, Urgency: model.UrgencyCritical, Title: "X1.0 Flare"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotPath != "/hooks/slack" {
		t.Errorf("path = %q, want /hooks/slack", gotPath)
	}
}

func TestWebhookChannel_MissingURL(t *testing.T) {
	target := config.WebhookTarget{ID: "signal", Type: "http", URLEnv: "DOES_NOT_EXIST_ENV"}
	ch := NewWebhookChannel(target)

	if err := ch.Send(context.Background(), model.Alert{}); err == nil {
		t.Fatal("expected error for missing webhook URL")
	}
}
