package dispatch

import "github.com/spacewatch/checker/internal/config"

// BuildChannels constructs the channel registry Dispatch expects: one
// WebhookChannel per configured webhook target (keyed by its id, e.g.
// "signal"), plus a LogChannel standing in for "desktop" (spec.md §1 scopes
// the real desktop transport out of the core).
func BuildChannels(cfg *config.Config) map[string]Channel {
	channels := map[string]Channel{
		"desktop": NewLogChannel(),
	}
	for _, target := range cfg.Webhooks {
		channels[target.ID] = NewWebhookChannel(target)
	}
	return channels
}
