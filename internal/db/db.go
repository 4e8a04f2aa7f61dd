package db

import (
	"fmt"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/jobs"
	"areasense/internal/tip"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables, parents first so foreign keys resolve
	if err := gdb.AutoMigrate(
		&area.Area{},
		&area.BriefingCard{},
		&area.Event{},
		&auth.Profile{},
		&tip.Tip{},
		&tip.Vote{},
		&tip.Report{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// Handles are unique regardless of case
	if err := gdb.Exec(`create unique index if not exists uq_profiles_handle_lower on profiles(lower(handle));`).Error; err != nil {
		return err
	}

	// Vote counters never go negative
	if err := gdb.Exec(`
do $$ begin
  alter table tips add constraint chk_tips_votes check (upvotes >= 0 and downvotes >= 0);
exception when duplicate_object then null;
end $$;
`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_tips_pending on tips(created_at, id) where status = 'pending';`,
		`create index if not exists idx_briefing_cards_area on briefing_cards(area_id, category, id);`,
		`create index if not exists idx_events_area_start on events(area_id, start_ts, id);`,
		`create index if not exists idx_reports_tip on reports(tip_id);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
