package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avoronov/pricedrop/pkg/logger"
)

func TestNoOpNotifier_Send(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(logger.Discard())
	err := n.Send(context.Background(), 42, "price dropped")
	require.NoError(t, err)
}

// compile-time interface check.
var _ Notifier = (*NoOpNotifier)(nil)
