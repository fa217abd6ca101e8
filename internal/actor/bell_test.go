package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pro70/dooropener/internal/hw"
)

func TestBellHonkDefaultDuration(t *testing.T) {
	work := hw.NewFakeOutput()
	ind := hw.NewFakeOutput()
	b := NewBell(work, ind, nil, 50*time.Millisecond)

	b.Honk(0)

	require.Eventually(t, func() bool { return work.IsOn() && ind.IsOn() },
		time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return !work.IsOn() && !ind.IsOn() },
		time.Second, time.Millisecond)

	tr := work.Transitions()
	require.Len(t, tr, 2)
	require.GreaterOrEqual(t, tr[1].At.Sub(tr[0].At), 45*time.Millisecond)
}

func TestBellHonkOverrideDuration(t *testing.T) {
	work := hw.NewFakeOutput()
	b := NewBell(work, hw.NewFakeOutput(), nil, time.Hour)

	b.Honk(30 * time.Millisecond)

	require.Eventually(t, func() bool {
		tr := work.Transitions()
		return len(tr) == 2 && !tr[1].On
	}, time.Second, time.Millisecond)
}

func TestBellOverlappingHonksEndInactive(t *testing.T) {
	work := hw.NewFakeOutput()
	ind := hw.NewFakeOutput()
	b := NewBell(work, ind, nil, 100*time.Millisecond)

	// Overlapping honks race on the outputs; after quiescence both must be
	// inactive.
	b.Honk(100 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	b.Honk(100 * time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	require.False(t, work.IsOn())
	require.False(t, ind.IsOn())
}
