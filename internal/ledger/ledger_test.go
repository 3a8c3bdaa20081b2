package ledger

import (
	"fmt"
	"sync"
	"testing"
)

func TestReserveDetailDedupAndBudget(t *testing.T) {
	l := New(2, true)
	// wanted=2 => margin min(50, 0) = 0, budget 2.
	if l.MaxReservations() != 2 {
		t.Fatalf("MaxReservations = %d, want 2", l.MaxReservations())
	}
	if !l.ReserveDetail("a") {
		t.Error("first reserve of a failed")
	}
	if l.ReserveDetail("a") {
		t.Error("duplicate reserve of a succeeded")
	}
	if !l.ReserveDetail("b") {
		t.Error("reserve of b failed")
	}
	if l.ReserveDetail("c") {
		t.Error("reserve past budget succeeded")
	}
	if got := l.Reserved(); got != 2 {
		t.Errorf("Reserved = %d, want 2", got)
	}
}

func TestOverallocationMargin(t *testing.T) {
	if got := New(100, true).MaxReservations(); got != 120 {
		t.Errorf("wanted=100 details on: MaxReservations = %d, want 120", got)
	}
	if got := New(1000, true).MaxReservations(); got != 1050 {
		t.Errorf("wanted=1000 details on: MaxReservations = %d, want 1050", got)
	}
	if got := New(100, false).MaxReservations(); got != 100 {
		t.Errorf("details off: MaxReservations = %d, want 100", got)
	}
}

func TestPageSignaturesDoNotCollideWithIdentityKeys(t *testing.T) {
	l := New(10, true)
	if !l.ReserveDetail("x") {
		t.Fatal("reserve x failed")
	}
	if !l.ReservePage("x") {
		t.Error("page signature x blocked by identity key x")
	}
	if l.ReservePage("x") {
		t.Error("duplicate page signature accepted")
	}
}

func TestCountersUnderConcurrency(t *testing.T) {
	l := New(100, true) // budget 120
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if l.ReserveDetail(fmt.Sprintf("key-%d-%d", w, i)) {
					l.TryRecordEmitted()
				}
			}
		}(w)
	}
	wg.Wait()
	if got := l.Reserved(); got != 120 {
		t.Errorf("Reserved = %d, want exactly the budget 120", got)
	}
	if got := l.Saved(); got != 100 {
		t.Errorf("Saved = %d, want capped at wanted 100", got)
	}
	if !l.Exhausted() {
		t.Error("ledger should be exhausted")
	}
	if !l.SavedEnough() {
		t.Error("saved 100 >= wanted 100, SavedEnough should hold")
	}
}

func TestTryRecordEmittedArbitratesLastSlot(t *testing.T) {
	l := New(1, true)
	start := make(chan struct{})
	wins := make(chan bool, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			wins <- l.TryRecordEmitted()
		}()
	}
	close(start)
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly one for the last slot", won)
	}
	if got := l.Saved(); got != 1 {
		t.Errorf("Saved = %d, want 1", got)
	}
}
