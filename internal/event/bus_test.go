package event

import (
	"testing"
	"time"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus[string](4)
	defer bus.Close()

	first, cancelFirst := bus.Subscribe()
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe()
	defer cancelSecond()

	bus.Publish("hello")

	for _, subscriber := range []<-chan string{first, second} {
		select {
		case value := <-subscriber:
			if value != "hello" {
				t.Fatalf("unexpected value %q", value)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for value")
		}
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := NewBus[int](4)
	defer bus.Close()

	subscriber, cancel := bus.Subscribe()
	cancel()
	cancel() // idempotent

	bus.Publish(1)

	if _, ok := <-subscriber; ok {
		t.Fatal("expected closed channel after cancel")
	}
	if count := bus.SubscriberCount(); count != 0 {
		t.Fatalf("expected 0 subscribers, got %d", count)
	}
}

func TestBusDropsWhenSubscriberBufferFull(t *testing.T) {
	bus := NewBus[int](1)
	defer bus.Close()

	_, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(1)
	bus.Publish(2)

	if dropped := bus.Dropped(); dropped != 1 {
		t.Fatalf("expected 1 drop, got %d", dropped)
	}
	if published := bus.Published(); published != 2 {
		t.Fatalf("expected 2 published, got %d", published)
	}
}

func TestBusCloseClosesSubscribers(t *testing.T) {
	bus := NewBus[int](4)
	subscriber, cancel := bus.Subscribe()
	defer cancel()

	bus.Close()
	bus.Close() // idempotent

	if _, ok := <-subscriber; ok {
		t.Fatal("expected closed channel after bus close")
	}

	// Subscribing after close yields an already-closed channel.
	late, lateCancel := bus.Subscribe()
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Fatal("expected closed channel for late subscriber")
	}
}
