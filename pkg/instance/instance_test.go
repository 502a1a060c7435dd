package instance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrefersEnv(t *testing.T) {
	t.Setenv(EnvWorkerID, "cron-a")
	assert.Equal(t, "cron-a", GetID())
}

func TestGetIDGeneratesUniqueSuffix(t *testing.T) {
	t.Setenv(EnvWorkerID, "")
	a, b := GetID(), GetID()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.Contains(a, "-"))
}
