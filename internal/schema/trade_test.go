package schema

import (
	"testing"
	"time"
)

func TestTradeRealizedPnL(t *testing.T) {
	testCases := []struct {
		desc     string
		side     Side
		entry    Price
		exit     Price
		qty      Quantity
		expected Notional
	}{
		{
			"long profit",
			SideBuy, 100_0000, 105_0000, 10,
			Notional(5_0000 * 10),
		},
		{
			"long loss",
			SideBuy, 100_0000, 95_0000, 10,
			Notional(-5_0000 * 10),
		},
		{
			"short profit",
			SideSell, 100_0000, 95_0000, 10,
			Notional(5_0000 * 10),
		},
		{
			"short loss",
			SideSell, 100_0000, 105_0000, 10,
			Notional(-5_0000 * 10),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tr := NewTrade(1, "TEST", tc.side, tc.qty, tc.entry, time.Now())
			if leftover := tr.Reduce(2, tc.qty, tc.exit); leftover != 0 {
				t.Fatalf("leftover should be 0 but got %d", leftover)
			}

			if got := tr.RealizedPnL(); got != tc.expected {
				t.Fatalf("pnl mismatch! should be %d but got %d", tc.expected, got)
			}
			if tr.Remaining() != 0 {
				t.Fatalf("trade should be flat but %d remains", tr.Remaining())
			}
		})
	}
}

func TestTradeCumulativeFills(t *testing.T) {
	tr := NewTrade(1, "TEST", SideBuy, 100, 50_0000, time.Now())

	// cumulative reports for the same order id never double-count
	if err := tr.AddEntry(1, SideBuy, 100, 50_0000); err != nil {
		t.Fatalf("replayed entry report should be a no-op, err: %+v", err)
	}
	if tr.Remaining() != 100 {
		t.Fatalf("size should stay 100 but got %d", tr.Remaining())
	}

	tr.Reduce(2, 40, 51_0000)
	tr.Reduce(2, 40, 51_0000)
	if tr.Remaining() != 60 {
		t.Fatalf("size should be 60 but got %d", tr.Remaining())
	}

	// cumulative report grows from 40 to 70, only 30 fresh
	tr.Reduce(2, 70, 51_0000)
	if tr.Remaining() != 30 {
		t.Fatalf("size should be 30 but got %d", tr.Remaining())
	}
}

func TestTradeReduceLeftover(t *testing.T) {
	tr := NewTrade(1, "TEST", SideBuy, 50, 10_0000, time.Now())

	if leftover := tr.Reduce(2, 80, 10_0000); leftover != 30 {
		t.Fatalf("leftover should be 30 but got %d", leftover)
	}
	if tr.Remaining() != 0 {
		t.Fatalf("trade should be flat but %d remains", tr.Remaining())
	}
}

func TestTradeLockRejectsEntries(t *testing.T) {
	tr := NewTrade(1, "TEST", SideBuy, 10, 10_0000, time.Now())
	tr.Lock()

	if err := tr.AddEntry(2, SideBuy, 5, 10_0000); err != ErrTradeLocked {
		t.Fatalf("should reject with ErrTradeLocked but got %+v", err)
	}
	if err := tr.AddEntry(3, SideSell, 5, 10_0000); err != ErrTradeLocked {
		t.Fatalf("should reject with ErrTradeLocked but got %+v", err)
	}
}

func TestTradeSideMismatch(t *testing.T) {
	tr := NewTrade(1, "TEST", SideBuy, 10, 10_0000, time.Now())

	if err := tr.AddEntry(2, SideSell, 5, 10_0000); err != ErrTradeSideMismatch {
		t.Fatalf("should reject with ErrTradeSideMismatch but got %+v", err)
	}
}

func TestTradeAvgEntryPrice(t *testing.T) {
	tr := NewTrade(1, "TEST", SideBuy, 10, 10_0000, time.Now())
	if err := tr.AddEntry(2, SideBuy, 30, 20_0000); err != nil {
		t.Fatalf("add entry, err: %+v", err)
	}

	// (10*10 + 30*20) / 40 = 17.5
	if got := tr.AvgEntryPrice(); got != 17_5000 {
		t.Fatalf("avg entry should be 175000 but got %d", got)
	}
}

func TestTradeExpiredBy(t *testing.T) {
	opened := time.Now()
	tr := NewTrade(1, "TEST", SideBuy, 10, 10_0000, opened)

	if tr.ExpiredBy(opened.Add(30*time.Second), time.Minute) {
		t.Fatal("trade should not be expired yet")
	}
	if !tr.ExpiredBy(opened.Add(2*time.Minute), time.Minute) {
		t.Fatal("trade should be expired")
	}
	if tr.ExpiredBy(opened.Add(time.Hour), 0) {
		t.Fatal("zero hold time disables expiry")
	}
}
