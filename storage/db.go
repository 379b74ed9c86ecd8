// Package storage persists tracking results into SQLite.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"time"

	"github.com/LdDl/kicksense/export"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps SQLite connection with schema managed by embedded migrations
type DB struct {
	*sql.DB
	logger *logrus.Entry
}

// Open opens (or creates) database at path and migrates it to the latest schema
func Open(path string, logger *logrus.Entry) (*DB, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open database %s", path)
	}
	// single writer, avoids SQLITE_BUSY on concurrent transactions
	conn.SetMaxOpenConns(1)
	db := &DB{DB: conn, logger: logger.WithField("component", "storage")}
	if err := db.MigrateUp(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded migrations")
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sqlite driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migrate instance")
	}
	m.Log = &migrateLogger{logger: db.logger}
	return m, nil
}

// MigrateUp applies pending migrations. The migrate instance is not closed since that
// would close the shared connection.
func (db *DB) MigrateUp() error {
	m, err := db.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migration up failed")
	}
	return nil
}

// MigrateVersion returns current schema version, zero when nothing was applied
func (db *DB) MigrateVersion() (uint, bool, error) {
	m, err := db.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

type migrateLogger struct {
	logger *logrus.Entry
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debugf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Run describes one analysed video
type Run struct {
	MatchID     string
	Source      string
	FPS         float64
	Width       int
	Height      int
	TotalFrames int
	StartedAt   time.Time
}

// SaveRun inserts or replaces run description
func (db *DB) SaveRun(ctx context.Context, run Run) error {
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (match_id, source, fps, width, height, total_frames, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.MatchID, run.Source, run.FPS, run.Width, run.Height, run.TotalFrames, run.StartedAt.UTC(),
	)
	return errors.Wrapf(err, "can't save run %s", run.MatchID)
}

// SaveStats replaces per identity statistics of the match in a single transaction
func (db *DB) SaveStats(ctx context.Context, matchID string, rows []export.StatsRow) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM track_stats WHERE match_id = ?`, matchID); err != nil {
		return errors.Wrap(err, "can't clear previous stats")
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO track_stats (
			match_id, track_id, class, max_speed_kmh, avg_speed_kmh, total_distance_m, sprint_count,
			foul_risk, yellow_likelihood, red_likelihood, card_prediction, contact_events
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "can't prepare stats insert")
	}
	defer stmt.Close()
	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			matchID, int(row.ID), row.Class.String(), row.MaxSpeedKmh, row.AvgSpeedKmh, row.DistanceM, row.Sprints,
			row.FoulRisk, row.YellowLikelihood, row.RedLikelihood, string(row.Card), row.ContactEvents,
		)
		if err != nil {
			return errors.Wrapf(err, "can't insert stats of track %d", row.ID)
		}
	}
	return errors.Wrap(tx.Commit(), "can't commit stats")
}

// StatsRecord is a stored statistics line
type StatsRecord struct {
	TrackID       int
	Class         string
	MaxSpeedKmh   float64
	DistanceM     float64
	Sprints       int
	Card          string
	ContactEvents int
}

// Stats returns stored statistics of the match ordered by max speed descending
func (db *DB) Stats(ctx context.Context, matchID string) ([]StatsRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT track_id, class, max_speed_kmh, total_distance_m, sprint_count, card_prediction, contact_events
		FROM track_stats WHERE match_id = ?
		ORDER BY max_speed_kmh DESC, track_id`, matchID)
	if err != nil {
		return nil, errors.Wrap(err, "can't query stats")
	}
	defer rows.Close()
	var out []StatsRecord
	for rows.Next() {
		var r StatsRecord
		if err := rows.Scan(&r.TrackID, &r.Class, &r.MaxSpeedKmh, &r.DistanceM, &r.Sprints, &r.Card, &r.ContactEvents); err != nil {
			return nil, errors.Wrap(err, "can't scan stats")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "can't iterate stats")
}
