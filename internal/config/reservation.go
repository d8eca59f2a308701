package config

import "time"

// ReservationConfig holds the booking rules that are deployment choices
// rather than per-restaurant settings.
type ReservationConfig struct {
	SlotDuration  time.Duration // RESERVATION_SLOT_DURATION
	SweepInterval time.Duration // SWEEP_INTERVAL
	SweepBatch    int           // SWEEP_BATCH
}

func LoadReservationConfig() ReservationConfig {
	c := ReservationConfig{
		SlotDuration:  envDur("RESERVATION_SLOT_DURATION", 90*time.Minute),
		SweepInterval: envDur("SWEEP_INTERVAL", time.Minute),
		SweepBatch:    envInt("SWEEP_BATCH", 100),
	}
	if c.SlotDuration <= 0 {
		c.SlotDuration = 90 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.SweepBatch < 1 {
		c.SweepBatch = 100
	}
	return c
}
