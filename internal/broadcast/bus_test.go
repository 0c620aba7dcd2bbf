package broadcast

import (
	"errors"
	"testing"
	"time"

	"onlinewatch/internal/models"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe(1)
	defer cancelA()
	b, cancelB := bus.Subscribe(1)
	defer cancelB()

	ev := models.Event{Action: models.ConnectivityAction, IsOnline: true, At: time.Now()}
	if err := bus.Publish(ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for name, ch := range map[string]<-chan models.Event{"a": a, "b": b} {
		select {
		case got := <-ch:
			if !got.IsOnline || got.Action != models.ConnectivityAction {
				t.Errorf("%s received %+v", name, got)
			}
		default:
			t.Errorf("%s received nothing", name)
		}
	}
}

func TestFullSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := bus.Publish(models.Event{IsOnline: i%2 == 0}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if got := bus.Dropped(); got != 2 {
		t.Fatalf("expected 2 dropped deliveries, got %d", got)
	}
	if ev := <-ch; !ev.IsOnline {
		t.Fatalf("first event should be delivered")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
	if bus.Subscribers() != 0 {
		t.Fatalf("subscriber not removed")
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	bus.Close()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("close should close subscriber channels")
	}
	if err := bus.Publish(models.Event{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	late, _ := bus.Subscribe(1)
	if _, ok := <-late; ok {
		t.Fatalf("subscribing to a closed bus should yield a closed channel")
	}
}
