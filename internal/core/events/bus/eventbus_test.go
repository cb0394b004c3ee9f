package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []any
	_, err := b.Subscribe("health.damaged", func(e Event) error {
		got = append(got, e.Data())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("health.damaged", "knight", 12.5)))
	require.NoError(t, b.Publish(NewEvent("health.healed", "knight", 3.0)))

	assert.Equal(t, []any{12.5}, got)
	assert.True(t, b.HasSubscribers("health.damaged"))
	assert.False(t, b.HasSubscribers("health.healed"))
}

func TestDeliveryOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		_, err := b.Subscribe("tick", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(NewEvent("tick", "test", nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSubscriptionCancel(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("e", func(Event) error { calls++; return nil })
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID())
	assert.Equal(t, "e", sub.EventType())

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	assert.False(t, sub.IsActive())
	assert.False(t, b.HasSubscribers("e"))

	require.NoError(t, b.Publish(NewEvent("e", "test", nil)))
	assert.Zero(t, calls)
	assert.NoError(t, b.Unsubscribe(nil))
}

func TestCancelDuringDelivery(t *testing.T) {
	b := New()
	var second Subscription
	secondCalls := 0
	_, err := b.Subscribe("e", func(Event) error {
		return second.Cancel()
	})
	require.NoError(t, err)
	second, err = b.Subscribe("e", func(Event) error { secondCalls++; return nil })
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("e", "test", nil)))
	assert.Zero(t, secondCalls)
}

func TestErrorsAreJoined(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestNilHandlerRejected(t *testing.T) {
	b := New()
	_, err := b.Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestFilters(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	calls := 0
	_, _ = b.Subscribe("x", func(Event) error { calls++; return nil })

	onlyKnight := func(e Event) bool { return e.Source() == "knight" }
	require.NoError(t, b.PublishWithFilters(NewEvent("x", "goblin", nil), onlyKnight))
	require.NoError(t, b.PublishWithFilters(NewEvent("x", "knight", nil), onlyKnight))

	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), b.GetMetrics().DroppedByFilters)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	assert.Zero(t, b.GetMetrics().Published)

	obs := &testObserver{}
	b.AddObserver(obs)
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))

	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	assert.Equal(t, 1, obs.publishCount)
}
