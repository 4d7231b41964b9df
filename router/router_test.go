package router

import (
	"context"
	"errors"
	"testing"

	"bootstrap/controller"
	"bootstrap/failure"
	"bootstrap/logging"
	"bootstrap/message"
)

type mockClient struct {
	id string
}

func (m *mockClient) SendPrompt(ctx context.Context, req message.PromptRequest) (message.Completion, error) {
	return message.Completion{ID: m.id}, nil
}

func TestRouter_RoundRobin(t *testing.T) {
	clients := []controller.Completer{
		&mockClient{id: "client1"},
		&mockClient{id: "client2"},
		&mockClient{id: "client3"},
	}

	router := NewRouter(clients, logging.Discard())

	ctx := context.Background()
	req := message.PromptRequest{message.User("hi")}

	expectedOrder := []string{"client1", "client2", "client3", "client1", "client2", "client3"}

	for i, expectedID := range expectedOrder {
		resp, err := router.SendPrompt(ctx, req)
		if err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
		if resp.ID != expectedID {
			t.Errorf("Request %d: expected client %s, got %s", i+1, expectedID, resp.ID)
		}
	}
}

func TestRouter_EmptyClients(t *testing.T) {
	router := NewRouter(nil, logging.Discard())

	_, err := router.SendPrompt(context.Background(), message.PromptRequest{message.User("hi")})
	if err == nil {
		t.Fatal("Expected error for empty clients, got nil")
	}

	var sf *failure.ServiceFailure
	if !errors.As(err, &sf) {
		t.Fatalf("Expected *failure.ServiceFailure, got %T", err)
	}
	if !errors.Is(sf.Cause(), ErrNoClients) {
		t.Errorf("Expected cause ErrNoClients, got %v", sf.Cause())
	}
}
