package serve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_SubscribeUnsubscribe(t *testing.T) {
	n := NewNotifier()

	ch := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Len())

	n.Unsubscribe(ch)
	assert.Zero(t, n.Len())

	_, open := <-ch
	assert.False(t, open)
}

func TestNotifier_BroadcastDoesNotBlock(t *testing.T) {
	n := NewNotifier()
	a := n.Subscribe()
	b := n.Subscribe()
	defer n.Unsubscribe(a)
	defer n.Unsubscribe(b)

	// The second ping is dropped for listeners that have not drained.
	n.Broadcast()
	n.Broadcast()

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}
