package eventbus

import (
	"sync"
	"testing"
	"time"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := New()
	defer bus.Close()

	received := make(chan Event, 10)
	bus.Subscribe(TypeBatchFinalized, received)

	bus.Publish(Event{
		Type:      TypeBatchFinalized,
		Timestamp: time.Now(),
		Data:      map[string]string{"batch_id": "b0000001"},
	})

	select {
	case evt := <-received:
		if evt.Type != TypeBatchFinalized {
			t.Errorf("expected %s, got %s", TypeBatchFinalized, evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := New()
	defer bus.Close()

	ch1 := make(chan Event, 10)
	ch2 := make(chan Event, 10)
	bus.Subscribe(TypeBatchDispatched, ch1)
	bus.Subscribe(TypeBatchDispatched, ch2)

	bus.Publish(Event{Type: TypeBatchDispatched})

	for _, ch := range []chan Event{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBus_TypeFiltering(t *testing.T) {
	bus := New()
	defer bus.Close()

	finalizedCh := make(chan Event, 10)
	stagedCh := make(chan Event, 10)
	bus.Subscribe(TypeBatchFinalized, finalizedCh)
	bus.Subscribe(TypeSubmissionStaged, stagedCh)

	bus.Publish(Event{Type: TypeBatchFinalized})

	select {
	case <-finalizedCh:
	case <-time.After(time.Second):
		t.Fatal("finalized subscriber did not receive event")
	}

	select {
	case <-stagedCh:
		t.Fatal("staged subscriber should NOT receive finalized event")
	case <-time.After(50 * time.Millisecond):
		// good
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := New()
	defer bus.Close()

	received := make(chan Event, 100)
	bus.Subscribe(TypeBatchVerified, received)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Type: TypeBatchVerified})
		}()
	}
	wg.Wait()

	time.Sleep(100 * time.Millisecond)
	if len(received) != 50 {
		t.Errorf("expected 50 events, got %d", len(received))
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := New()

	received := make(chan Event, 10)
	bus.Subscribe(TypeBatchFinalized, received)
	bus.Close()

	bus.Publish(Event{Type: TypeBatchFinalized})

	select {
	case <-received:
		t.Fatal("publish after close should be a no-op")
	case <-time.After(50 * time.Millisecond):
		// good
	}
}
