package ops

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/schema"
)

func validAssignment() FileAssignment {
	return FileAssignment{
		Ticker:             "TEST",
		UnitSize:           100,
		MaxPositionSize:    1000,
		MaxHoldTimeSeconds: 300,
		TakeProfitTarget:   0.01,
		StopLossTarget:     0.02,
	}
}

func TestResolveDefaults(t *testing.T) {
	fc := &FileConfig{Assignments: []FileAssignment{validAssignment()}}

	loaded, err := Resolve(fc)
	require.NoError(t, err)
	require.Len(t, loaded.Assignments, 1)

	cfg := loaded.Assignments[0]
	assert.Equal(t, 60*time.Second, cfg.Cooldown)
	assert.Equal(t, 5*time.Second, cfg.Stagger)
	assert.Equal(t, 60*time.Second, cfg.EntryTimeInForce)
	assert.Equal(t, 10*time.Second, cfg.ExitTimeInForce)
	assert.Equal(t, 10*time.Second, cfg.EmergencyInterval)
	assert.Equal(t, 5*time.Minute, cfg.MaxHoldTime)
	assert.Equal(t, schema.Quantity(1000), cfg.Risk.MaxPosition)
	assert.Equal(t, 1.0, cfg.Risk.BullishUpperConf)
	assert.Equal(t, 1.0, cfg.Risk.BearishUpperConf)
}

func TestResolveExplicitTimings(t *testing.T) {
	fa := validAssignment()
	fa.StaggerDelaySeconds = 2.5
	fa.CooldownSeconds = 30
	fa.EntryTimeInForceSeconds = 5
	fa.ExitTimeInForceSeconds = 3

	loaded, err := Resolve(&FileConfig{Assignments: []FileAssignment{fa}})
	require.NoError(t, err)

	cfg := loaded.Assignments[0]
	assert.Equal(t, 2500*time.Millisecond, cfg.Stagger)
	assert.Equal(t, 30*time.Second, cfg.Cooldown)
	assert.Equal(t, 5*time.Second, cfg.EntryTimeInForce)
	assert.Equal(t, 3*time.Second, cfg.ExitTimeInForce)
}

func TestResolveFailsFast(t *testing.T) {
	testCases := []struct {
		desc string
		mut  func(*FileAssignment)
	}{
		{"empty ticker", func(fa *FileAssignment) { fa.Ticker = "" }},
		{"zero unit size", func(fa *FileAssignment) { fa.UnitSize = 0 }},
		{"negative unit size", func(fa *FileAssignment) { fa.UnitSize = -1 }},
		{"zero max position", func(fa *FileAssignment) { fa.MaxPositionSize = 0 }},
		{"max position below unit", func(fa *FileAssignment) { fa.MaxPositionSize = 50 }},
		{"zero take profit", func(fa *FileAssignment) { fa.TakeProfitTarget = 0 }},
		{"zero stop loss", func(fa *FileAssignment) { fa.StopLossTarget = 0 }},
		{"zero hold time", func(fa *FileAssignment) { fa.MaxHoldTimeSeconds = 0 }},
		{"negative loss limit", func(fa *FileAssignment) { fa.MaxLossPerTrade = -1 }},
		{"confidence bounds inverted", func(fa *FileAssignment) {
			fa.BullishLowerConfidence = 0.9
			fa.BullishUpperConfidence = 0.5
		}},
		{"confidence above one", func(fa *FileAssignment) { fa.BearishUpperConfidence = 1.5 }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			fa := validAssignment()
			tc.mut(&fa)

			_, err := Resolve(&FileConfig{Assignments: []FileAssignment{fa}})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("should fail with ErrInvalidConfig but got %+v", err)
			}
		})
	}
}

func TestResolveRejectsDuplicateTickers(t *testing.T) {
	fc := &FileConfig{Assignments: []FileAssignment{validAssignment(), validAssignment()}}

	_, err := Resolve(fc)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResolveRejectsEmpty(t *testing.T) {
	_, err := Resolve(&FileConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
