package sync

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorLog_Rolling(t *testing.T) {
	l := NewErrorLog()

	for i := 0; i < 150; i++ {
		l.Record("products", StrategyPrimary, fmt.Errorf("failure %d", i))
	}

	entries := l.Entries()
	if len(entries) != 100 {
		t.Fatalf("Log should keep the last 100 entries, got %d", len(entries))
	}
	if entries[0].Message != "failure 50" {
		t.Errorf("Oldest retained entry should be failure 50, got %q", entries[0].Message)
	}
	if entries[99].Message != "failure 149" {
		t.Errorf("Newest entry should be failure 149, got %q", entries[99].Message)
	}
}

func TestErrorLog_LastFor(t *testing.T) {
	l := NewErrorLog()
	l.Record("products", StrategyPrimary, errors.New("first"))
	l.Record("clients", StrategySnapshot, errors.New("other"))
	l.Record("products", StrategyRESTFallback, errors.New("second"))

	entry, ok := l.LastFor("products")
	if !ok {
		t.Fatal("Expected an entry for products")
	}
	if entry.Message != "second" || entry.Strategy != string(StrategyRESTFallback) {
		t.Errorf("Expected most recent products entry, got %+v", entry)
	}

	if _, ok := l.LastFor("orders"); ok {
		t.Error("Expected no entry for orders")
	}

	// nil errors are ignored
	l.Record("products", StrategyPrimary, nil)
	if len(l.Entries()) != 3 {
		t.Errorf("nil error should not be recorded, got %d entries", len(l.Entries()))
	}
}
