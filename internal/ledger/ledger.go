// Package ledger holds the per-run budget and dedup accounting that
// turns an unbounded crawl into a bounded one. It is the only mutable
// state shared between worker goroutines; one mutex guards all of it.
package ledger

import (
	"math"
	"sync"
)

const pagePrefix = "page:"

// Ledger tracks how many detail tasks may ever be created and which
// identity keys and page signatures have been seen. Initialized once per
// run and never reset mid-run.
type Ledger struct {
	mu              sync.Mutex
	resultsWanted   int
	maxReservations int
	reserved        int
	saved           int
	seen            map[string]struct{}
}

// New sizes the budget for a run. With detail scraping on, a small
// overallocation margin (the lesser of 50 or 20% of resultsWanted)
// absorbs reserved tasks that fail terminally and never yield a record;
// without the slack the run would under-deliver.
func New(resultsWanted int, scrapeDetails bool) *Ledger {
	if resultsWanted <= 0 {
		resultsWanted = math.MaxInt
	}
	maxRes := resultsWanted
	if scrapeDetails {
		margin := resultsWanted / 5
		if margin > 50 {
			margin = 50
		}
		if maxRes <= math.MaxInt-margin {
			maxRes += margin
		}
	}
	return &Ledger{
		resultsWanted:   resultsWanted,
		maxReservations: maxRes,
		seen:            make(map[string]struct{}),
	}
}

// ReserveDetail commits one detail attempt against the budget. It
// returns false without side effects when the key was already reserved
// or the budget is exhausted; true tells the caller to enqueue the task.
func (l *Ledger) ReserveDetail(identityKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reserved >= l.maxReservations {
		return false
	}
	if _, dup := l.seen[identityKey]; dup {
		return false
	}
	l.seen[identityKey] = struct{}{}
	l.reserved++
	return true
}

// ReservePage dedupes a pagination signature so an identical next-page
// request is never enqueued twice. Page signatures share the seen set
// with identity keys under a prefix so the namespaces cannot collide.
func (l *Ledger) ReservePage(signature string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := pagePrefix + signature
	if _, dup := l.seen[key]; dup {
		return false
	}
	l.seen[key] = struct{}{}
	return true
}

// TryRecordEmitted commits one record against resultsWanted. Check and
// increment share one critical section, so two emitters racing for the
// last slot cannot both win. False means the record must not be saved.
func (l *Ledger) TryRecordEmitted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.saved >= l.resultsWanted {
		return false
	}
	l.saved++
	return true
}

// SavedEnough reports whether the run has emitted all wanted records.
func (l *Ledger) SavedEnough() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saved >= l.resultsWanted
}

// Exhausted reports whether no further detail task may be reserved.
func (l *Ledger) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserved >= l.maxReservations
}

func (l *Ledger) Saved() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saved
}

func (l *Ledger) Reserved() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reserved
}

func (l *Ledger) ResultsWanted() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resultsWanted
}

func (l *Ledger) MaxReservations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxReservations
}
