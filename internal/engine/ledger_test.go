package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type captureSink struct {
	mu    sync.Mutex
	saved []Answer
	err   error
	done  chan struct{}
}

func (s *captureSink) Save(a Answer) error {
	s.mu.Lock()
	s.saved = append(s.saved, a)
	s.mu.Unlock()
	if s.done != nil {
		s.done <- struct{}{}
	}
	return s.err
}

func TestLedgerLastWriteWins(t *testing.T) {
	l := NewLedger(nil, zerolog.Nop())

	l.Record(Answer{QuestionID: 3, Value: "A"})
	l.Record(Answer{QuestionID: 3, Value: "C", Confidence: "confident"})

	a, ok := l.Get(3)
	if !ok {
		t.Fatal("answer not found")
	}
	if a.Value != "C" || a.Confidence != "confident" {
		t.Errorf("got %+v, want overwrite with C/confident", a)
	}
	if l.Len() != 1 {
		t.Errorf("len = %d, want 1 (no history retained)", l.Len())
	}
}

func TestLedgerGetUnanswered(t *testing.T) {
	l := NewLedger(nil, zerolog.Nop())
	if _, ok := l.Get(42); ok {
		t.Error("expected unanswered question to report not-ok")
	}
}

func TestLedgerIsComplete(t *testing.T) {
	l := NewLedger(nil, zerolog.Nop())
	ids := []int{1, 2, 3}

	l.Record(Answer{QuestionID: 1, Value: "A"})
	l.Record(Answer{QuestionID: 2, Value: "B"})
	if l.IsComplete(ids) {
		t.Error("ledger incomplete, IsComplete returned true")
	}

	l.Record(Answer{QuestionID: 3, Value: "D"})
	if !l.IsComplete(ids) {
		t.Error("all ids answered, IsComplete returned false")
	}
}

func TestLedgerForwardsToSink(t *testing.T) {
	sink := &captureSink{done: make(chan struct{}, 1)}
	l := NewLedger(sink, zerolog.Nop())

	l.Record(Answer{QuestionID: 5, Value: "B"})
	<-sink.done

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.saved) != 1 || sink.saved[0].Value != "B" {
		t.Errorf("sink saw %+v, want one copy of the answer", sink.saved)
	}
}

func TestLedgerSinkFailureDoesNotAffectRecord(t *testing.T) {
	sink := &captureSink{err: errors.New("network down"), done: make(chan struct{}, 1)}
	l := NewLedger(sink, zerolog.Nop())

	l.Record(Answer{QuestionID: 9, Value: "A"})
	<-sink.done

	if a, ok := l.Get(9); !ok || a.Value != "A" {
		t.Error("local record must survive sink failure")
	}
}

func TestLedgerAllReturnsCopy(t *testing.T) {
	l := NewLedger(nil, zerolog.Nop())
	l.Record(Answer{QuestionID: 1, Value: "A"})

	all := l.All()
	all[1] = Answer{QuestionID: 1, Value: "Z"}

	if a, _ := l.Get(1); a.Value != "A" {
		t.Error("mutating All() copy leaked into the ledger")
	}
}
