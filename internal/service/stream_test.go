package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"ai-tutor/internal/domain"
)

func collectEvents(t *testing.T, sink *EventSink) []domain.StreamEvent {
	t.Helper()
	var events []domain.StreamEvent
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-sink.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for stream to close")
		}
	}
}

func TestEventSink_OrderedDelivery(t *testing.T) {
	sink := NewEventSink(context.Background(), zap.NewNop())

	if err := sink.Routing(domain.ToolChat, "no tool keywords matched"); err != nil {
		t.Fatalf("routing: %v", err)
	}
	if err := sink.Generating(); err != nil {
		t.Fatalf("generating: %v", err)
	}
	if err := sink.Token("Hel"); err != nil {
		t.Fatalf("token: %v", err)
	}
	if err := sink.Token("lo"); err != nil {
		t.Fatalf("token: %v", err)
	}
	sink.Done(domain.ToolChat, &domain.MessageMetadata{ToolUsed: domain.ToolChat})

	events := collectEvents(t, sink)
	wantTypes := []domain.EventType{
		domain.EventRouting,
		domain.EventGenerating,
		domain.EventToken,
		domain.EventToken,
		domain.EventDone,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d", len(wantTypes), len(events))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d: got %s, want %s", i, events[i].Type, want)
		}
	}
	if events[2].Token+events[3].Token != "Hello" {
		t.Errorf("token payloads out of order: %q %q", events[2].Token, events[3].Token)
	}
}

func TestEventSink_ExactlyOneTerminal(t *testing.T) {
	sink := NewEventSink(context.Background(), zap.NewNop())

	sink.Fail(&domain.ToolError{Kind: domain.ErrKindUpstreamUnavailable, Message: "boom"})
	// Un segundo terminal se descarta en silencio.
	sink.Done(domain.ToolChat, nil)

	events := collectEvents(t, sink)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != domain.EventError {
		t.Fatalf("expected error terminal, got %s", events[0].Type)
	}
}

func TestEventSink_DropsEventsAfterTerminal(t *testing.T) {
	sink := NewEventSink(context.Background(), zap.NewNop())

	sink.Done(domain.ToolChat, nil)

	if err := sink.Token("late"); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}

	events := collectEvents(t, sink)
	if len(events) != 1 || events[0].Type != domain.EventDone {
		t.Fatalf("expected only the done terminal, got %v", events)
	}
}

func TestEventSink_CancelUnblocksProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := NewEventSink(ctx, zap.NewNop())

	// Llenamos el buffer sin consumidor.
	for i := 0; i < 64; i++ {
		if err := sink.Token("x"); err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
	}

	cancel()

	if err := sink.Token("overflow"); err == nil {
		t.Fatal("expected context error once the caller is gone")
	}

	// El envio abortado cierra el canal: un consumidor tardio drena lo
	// bufferizado y sale del range en vez de quedar bloqueado.
	done := make(chan struct{})
	go func() {
		for range sink.Events() {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer still blocked after caller disconnect")
	}
}

func TestEventSink_CloseWithoutTerminalReleasesConsumer(t *testing.T) {
	sink := NewEventSink(context.Background(), zap.NewNop())

	if err := sink.Token("partial"); err != nil {
		t.Fatalf("token: %v", err)
	}
	sink.Close()

	events := collectEvents(t, sink)
	if len(events) != 1 || events[0].Type != domain.EventToken {
		t.Fatalf("expected the buffered token and a closed channel, got %v", events)
	}

	if err := sink.Token("late"); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed after close, got %v", err)
	}
}
