package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNotificationQueues(t *testing.T) {
	queues := GetNotificationQueues()

	require.NotEmpty(t, queues, "queues list should not be empty")

	names := make([]string, 0, len(queues))
	seen := map[string]bool{}
	for _, q := range queues {
		assert.NotEmpty(t, q.RoutingKey)
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
		names = append(names, q.QueueName)
	}

	assert.Contains(t, names, QueueViolationLog)
	assert.Contains(t, names, QueueVerification)
	assert.Contains(t, names, QueuePasswordReset)
	assert.Contains(t, names, QueuePremiumExpiry)
	assert.Contains(t, names, QueueInvoice)
}
