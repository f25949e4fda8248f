package notify

import (
	"context"
	"testing"
	"time"
)

func TestConsoleAnswerWithoutPending(t *testing.T) {
	c := NewConsole(false, time.Second)

	if c.Answer("yes") {
		t.Error("Answer consumed input with no confirmation outstanding")
	}
	if c.Waiting() {
		t.Error("Waiting reported an outstanding confirmation")
	}
}

func TestConsoleConfirmAnswered(t *testing.T) {
	c := NewConsole(false, 5*time.Second)

	type result struct {
		resp Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := c.Confirm(context.Background(), "Confirmation", "Did you take Aspirin?")
		done <- result{resp, err}
	}()

	// Wait for the confirmation to become pending before answering.
	deadline := time.Now().Add(time.Second)
	for !c.Waiting() {
		if time.Now().After(deadline) {
			t.Fatal("Confirm never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	if !c.Answer("yes") {
		t.Fatal("Answer did not consume the yes token")
	}

	res := <-done
	if res.err != nil {
		t.Fatalf("Confirm failed: %v", res.err)
	}
	if res.resp != Yes {
		t.Errorf("response = %v, want Yes", res.resp)
	}
	if c.Waiting() {
		t.Error("confirmation still pending after answer")
	}
}

func TestConsoleSecondConfirmSupersedesFirst(t *testing.T) {
	c := NewConsole(false, 5*time.Second)

	first := make(chan Response, 1)
	go func() {
		resp, _ := c.Confirm(context.Background(), "Confirmation", "Did you take Aspirin?")
		first <- resp
	}()

	deadline := time.Now().Add(time.Second)
	for !c.Waiting() {
		if time.Now().After(deadline) {
			t.Fatal("first Confirm never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	second := make(chan Response, 1)
	go func() {
		resp, _ := c.Confirm(context.Background(), "Confirmation", "Did you take Ibuprofen?")
		second <- resp
	}()

	// The superseded question resolves immediately as unanswered.
	select {
	case resp := <-first:
		if resp != NoResponse {
			t.Errorf("superseded response = %v, want NoResponse", resp)
		}
	case <-time.After(time.Second):
		t.Fatal("superseded confirmation never resolved")
	}

	// The answer goes to the newer question.
	if !c.Answer("yes") {
		t.Fatal("Answer did not consume the yes token")
	}
	select {
	case resp := <-second:
		if resp != Yes {
			t.Errorf("second response = %v, want Yes", resp)
		}
	case <-time.After(time.Second):
		t.Fatal("second confirmation never resolved")
	}
}

func TestConsoleConfirmTimeout(t *testing.T) {
	c := NewConsole(false, 20*time.Millisecond)

	resp, err := c.Confirm(context.Background(), "Confirmation", "Did you take Aspirin?")
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if resp != NoResponse {
		t.Errorf("response after timeout = %v, want NoResponse", resp)
	}
}

func TestConsoleConfirmCancelled(t *testing.T) {
	c := NewConsole(false, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := c.Confirm(ctx, "Confirmation", "Did you take Aspirin?")
	if err == nil {
		t.Error("Confirm with cancelled context returned no error")
	}
	if resp != NoResponse {
		t.Errorf("response = %v, want NoResponse", resp)
	}
}

func TestConsoleAnswerTokens(t *testing.T) {
	tests := []struct {
		input    string
		consumed bool
		want     Response
	}{
		{"yes", true, Yes},
		{"y", true, Yes},
		{"no", true, No},
		{"n", true, No},
		{"maybe", false, NoResponse},
		{"list", false, NoResponse},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c := NewConsole(false, 5*time.Second)

			done := make(chan Response, 1)
			go func() {
				resp, _ := c.Confirm(context.Background(), "Confirmation", "Did you take it?")
				done <- resp
			}()

			deadline := time.Now().Add(time.Second)
			for !c.Waiting() {
				if time.Now().After(deadline) {
					t.Fatal("Confirm never became pending")
				}
				time.Sleep(time.Millisecond)
			}

			if got := c.Answer(tt.input); got != tt.consumed {
				t.Fatalf("Answer(%q) = %v, want %v", tt.input, got, tt.consumed)
			}
			if !tt.consumed {
				// Unblock the goroutine before the subtest ends.
				c.Answer("no")
				<-done
				return
			}

			if resp := <-done; resp != tt.want {
				t.Errorf("response = %v, want %v", resp, tt.want)
			}
		})
	}
}
