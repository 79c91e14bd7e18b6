package db

import (
	"context"
	"fmt"
)

// LoadDay reads the persisted simulated day, seeding day 0 on first run.
func (p *Postgres) LoadDay(ctx context.Context) (uint32, error) {
	var day uint32
	err := p.DB.QueryRowContext(ctx, `INSERT INTO sim_clock (id, day) VALUES (1, 0)
        ON CONFLICT (id) DO UPDATE SET day=sim_clock.day
        RETURNING day`).Scan(&day)
	if err != nil {
		return 0, fmt.Errorf("load day: %w", err)
	}
	return day, nil
}

// SaveDay persists the simulated day.
func (p *Postgres) SaveDay(ctx context.Context, day uint32) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO sim_clock (id, day) VALUES (1, $1)
        ON CONFLICT (id) DO UPDATE SET day=EXCLUDED.day`, day)
	if err != nil {
		return fmt.Errorf("save day: %w", err)
	}
	return nil
}
