package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pro70/dooropener/internal/caller"
	"github.com/pro70/dooropener/internal/hw"
)

func TestVirtualRelayRejectsTriggerWhileHot(t *testing.T) {
	out := hw.NewFakeOutput()
	c := caller.NewFake()
	v := NewVirtualRelay("bellactor", out, c, nil, 150*time.Millisecond)
	v.SetOnURL("http://on")
	v.SetOffURL("http://off")

	v.Trigger()
	require.True(t, v.Hot())

	// A second trigger during the hot window is a no-op.
	v.Trigger()

	require.Eventually(t, func() bool { return !v.Hot() },
		time.Second, time.Millisecond)
	require.Equal(t, 1, c.CallsTo("http://on"))
	require.Equal(t, 1, c.CallsTo("http://off"))
	require.False(t, out.IsOn())

	// Once cooled down, triggering works again.
	v.Trigger()
	require.Eventually(t, func() bool { return c.CallsTo("http://on") == 2 },
		time.Second, time.Millisecond)
}

func TestVirtualRelayTriggerDoesNotBlock(t *testing.T) {
	v := NewVirtualRelay("bellactor", hw.NewFakeOutput(), caller.NewFake(), nil, 500*time.Millisecond)

	start := time.Now()
	v.Trigger()
	require.Less(t, time.Since(start), 100*time.Millisecond)

	require.Eventually(t, func() bool { return !v.Hot() },
		2*time.Second, 5*time.Millisecond)
}
