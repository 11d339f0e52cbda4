package session

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAppendAndHistory(t *testing.T) {
	s := NewStore(DefaultMaxMessages)

	s.Append("conv-1", RoleHuman, "hello")
	s.Append("conv-1", RoleAssistant, "hi there")

	history := s.History("conv-1", 0)
	if len(history) != 2 {
		t.Fatalf("got %d messages, want 2", len(history))
	}
	if history[0].Role != RoleHuman || history[0].Content != "hello" {
		t.Errorf("first message = %+v", history[0])
	}
	if history[1].Role != RoleAssistant || history[1].Content != "hi there" {
		t.Errorf("second message = %+v", history[1])
	}
}

func TestHistoryUnknownConversation(t *testing.T) {
	s := NewStore(DefaultMaxMessages)

	if h := s.History("nope", 0); h != nil {
		t.Errorf("History() = %v, want nil", h)
	}
}

func TestHistoryWindow(t *testing.T) {
	s := NewStore(DefaultMaxMessages)
	for i := 0; i < 10; i++ {
		s.Append("conv", RoleHuman, fmt.Sprintf("msg-%d", i))
	}

	history := s.History("conv", 6)
	if len(history) != 6 {
		t.Fatalf("got %d messages, want 6", len(history))
	}
	if history[0].Content != "msg-4" {
		t.Errorf("window starts at %q, want msg-4", history[0].Content)
	}
	if history[5].Content != "msg-9" {
		t.Errorf("window ends at %q, want msg-9", history[5].Content)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s := NewStore(DefaultMaxMessages)
	s.Append("conv", RoleHuman, "original")

	history := s.History("conv", 0)
	history[0].Content = "mutated"

	if got := s.History("conv", 0)[0].Content; got != "original" {
		t.Errorf("store content = %q, external mutation leaked in", got)
	}
}

func TestCapEvictsOldestFirst(t *testing.T) {
	s := NewStore(4)
	for i := 0; i < 7; i++ {
		s.Append("conv", RoleHuman, fmt.Sprintf("msg-%d", i))
	}

	if n := s.Len("conv"); n != 4 {
		t.Fatalf("Len() = %d, want 4", n)
	}
	history := s.History("conv", 0)
	if history[0].Content != "msg-3" {
		t.Errorf("oldest surviving message = %q, want msg-3", history[0].Content)
	}
	if history[3].Content != "msg-6" {
		t.Errorf("newest message = %q, want msg-6", history[3].Content)
	}
}

func TestClear(t *testing.T) {
	s := NewStore(DefaultMaxMessages)
	s.Append("conv", RoleHuman, "hello")
	s.Append("other", RoleHuman, "untouched")

	s.Clear("conv")

	if n := s.Len("conv"); n != 0 {
		t.Errorf("Len() after Clear = %d", n)
	}
	if n := s.Len("other"); n != 1 {
		t.Errorf("other conversation affected, Len() = %d", n)
	}
	if n := s.Conversations(); n != 1 {
		t.Errorf("Conversations() = %d, want 1", n)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("conv-%d", n%3)
			for j := 0; j < 50; j++ {
				s.Append(id, RoleHuman, "ping")
				s.History(id, 6)
				s.Len(id)
			}
		}(i)
	}
	wg.Wait()

	if n := s.Conversations(); n != 3 {
		t.Errorf("Conversations() = %d, want 3", n)
	}
}

func TestZeroCapFallsBackToDefault(t *testing.T) {
	s := NewStore(0)
	for i := 0; i < DefaultMaxMessages+5; i++ {
		s.Append("conv", RoleHuman, "x")
	}
	if n := s.Len("conv"); n != DefaultMaxMessages {
		t.Errorf("Len() = %d, want %d", n, DefaultMaxMessages)
	}
}
