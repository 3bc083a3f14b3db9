package session

import (
	"strings"
)

// WebhookPath is where the provider delivers transcript events.
const WebhookPath = "/api/recall/transcript"

// WebhookURL derives the callback address registered with the provider.
// An http(s) publicBaseURL wins; otherwise the request host is used unless it
// is a loopback name the provider could not reach. Empty means no webhook.
func WebhookURL(publicBaseURL, requestHost string) string {
	base := strings.TrimSpace(publicBaseURL)
	lower := strings.ToLower(base)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return strings.TrimRight(base, "/") + WebhookPath
	}

	host := strings.TrimSpace(requestHost)
	if host == "" || isLoopback(host) {
		return ""
	}
	return "https://" + host + WebhookPath
}

func isLoopback(host string) bool {
	return strings.HasPrefix(strings.ToLower(host), "localhost") || strings.Contains(host, "127.0.0.1")
}
