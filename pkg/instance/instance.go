package instance

import (
	"os"

	"github.com/jewel109/mobiledoor-api/pkg/env"
)

// GetID names this process in logs: MOBILEDOOR_INSTANCE_ID, then the
// hostname, then "local".
func GetID() string {
	if id := env.Get("MOBILEDOOR_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
