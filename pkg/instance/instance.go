package instance

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// EnvWorkerID overrides the generated instance identifier.
const EnvWorkerID = "CIL_WORKER_ID"

// GetID returns an identifier for this process, used as the owner value of
// cron locks and in worker logs. It prefers CIL_WORKER_ID, then the hostname
// plus a short random suffix so two processes on one host never collide.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(EnvWorkerID)); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return host + "-" + uuid.NewString()[:8]
}
