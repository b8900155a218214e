package state

import (
	"testing"

	"main/internal/schema"
)

func TestLedgerBrokerPositionOverwrite(t *testing.T) {
	l := NewLedger()

	if got := l.BrokerPosition("TEST"); got != 0 {
		t.Fatalf("unseen ticker should be 0 but got %d", got)
	}

	l.SetBrokerPosition("TEST", 800)
	l.SetBrokerPosition("TEST", 750)
	if got := l.BrokerPosition("TEST"); got != 750 {
		t.Fatalf("latest report should win, should be 750 but got %d", got)
	}

	// advisory fills never touch the broker count
	l.RecordFill("TEST", schema.SideBuy, 100)
	if got := l.BrokerPosition("TEST"); got != 750 {
		t.Fatalf("broker count should stay 750 but got %d", got)
	}
}

func TestLedgerInternalSize(t *testing.T) {
	l := NewLedger()

	l.RecordFill("TEST", schema.SideBuy, 100)
	l.RecordFill("TEST", schema.SideSell, 40)
	if got := l.InternalSize("TEST"); got != 60 {
		t.Fatalf("internal size should be 60 but got %d", got)
	}

	l.SetInternalSize("TEST", 0)
	if got := l.InternalSize("TEST"); got != 0 {
		t.Fatalf("internal size should be 0 but got %d", got)
	}
}

func TestLedgerTickerIsolation(t *testing.T) {
	l := NewLedger()

	l.SetBrokerPosition("AAA", 10)
	l.SetBrokerPosition("BBB", -20)

	if got := l.BrokerPosition("AAA"); got != 10 {
		t.Fatalf("AAA should be 10 but got %d", got)
	}
	if got := l.BrokerPosition("BBB"); got != -20 {
		t.Fatalf("BBB should be -20 but got %d", got)
	}
}
