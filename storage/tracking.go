package storage

import (
	"context"
	"time"

	"github.com/LdDl/kicksense/tracks"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const DefaultBatchSize = 500

// TrackingRow is one metric position sample
type TrackingRow struct {
	Time    time.Time
	TrackID tracks.ID
	// 0 or 1, unknown teams are stored as 0
	TeamID      int
	X           float64
	Y           float64
	SpeedKmh    float64
	IsSprinting bool
}

// TrackingWriter buffers rows of a match and writes them in batches, one transaction per batch
type TrackingWriter struct {
	db        *DB
	matchID   string
	batchSize int
	buffer    []TrackingRow
	written   int
}

// NewTrackingWriter creates writer. Non positive batch size means DefaultBatchSize.
func (db *DB) NewTrackingWriter(matchID string, batchSize int) *TrackingWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &TrackingWriter{
		db:        db,
		matchID:   matchID,
		batchSize: batchSize,
		buffer:    make([]TrackingRow, 0, batchSize),
	}
}

// Add buffers row and flushes when the batch is full
func (tw *TrackingWriter) Add(ctx context.Context, row TrackingRow) error {
	if row.TeamID != 0 && row.TeamID != 1 {
		row.TeamID = 0
	}
	tw.buffer = append(tw.buffer, row)
	if len(tw.buffer) >= tw.batchSize {
		return tw.Flush(ctx)
	}
	return nil
}

// Flush writes buffered rows. Rows stay buffered when the write fails.
func (tw *TrackingWriter) Flush(ctx context.Context) error {
	if len(tw.buffer) == 0 {
		return nil
	}
	tx, err := tw.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracking_data (time, match_id, track_id, team_id, x_coord, y_coord, speed, is_sprinting)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "can't prepare tracking insert")
	}
	defer stmt.Close()
	for _, row := range tw.buffer {
		_, err := stmt.ExecContext(ctx,
			row.Time.UTC(), tw.matchID, int(row.TrackID), row.TeamID, row.X, row.Y, row.SpeedKmh, row.IsSprinting,
		)
		if err != nil {
			return errors.Wrapf(err, "can't insert track %d", row.TrackID)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "can't commit tracking batch")
	}
	tw.written += len(tw.buffer)
	tw.buffer = tw.buffer[:0]
	return nil
}

// Written returns number of rows committed so far
func (tw *TrackingWriter) Written() int {
	return tw.written
}

// SaveTracking writes metric positions of players and goalkeepers. Timestamps are start plus
// frame offset, sprinting means speed above sprintKmh.
func (db *DB) SaveTracking(ctx context.Context, matchID string, store *tracks.Store, start time.Time, sprintKmh float64, batchSize int) (int, error) {
	if store.Meta.FPS <= 0 {
		return 0, errors.New("store has no fps")
	}
	tw := db.NewTrackingWriter(matchID, batchSize)
	frameDuration := float64(time.Second) / store.Meta.FPS
	var addErr error
	for _, cat := range []tracks.Category{tracks.Players, tracks.Goalkeepers} {
		store.ForEach(cat, func(frameIdx int, id tracks.ID, rec *tracks.Record) {
			if addErr != nil || rec.PositionTransformed == nil {
				return
			}
			team, _ := rec.Team()
			speed := rec.SpeedOrZero()
			addErr = tw.Add(ctx, TrackingRow{
				Time:        start.Add(time.Duration(float64(frameIdx) * frameDuration)),
				TrackID:     id,
				TeamID:      team,
				X:           rec.PositionTransformed.X,
				Y:           rec.PositionTransformed.Y,
				SpeedKmh:    speed,
				IsSprinting: speed > sprintKmh,
			})
		})
		if addErr != nil {
			return tw.Written(), addErr
		}
	}
	if err := tw.Flush(ctx); err != nil {
		return tw.Written(), err
	}
	db.logger.WithFields(logrus.Fields{
		"match_id": matchID,
		"rows":     tw.Written(),
	}).Info("Tracking data saved")
	return tw.Written(), nil
}

// Tracking returns stored rows of a track ordered by time
func (db *DB) Tracking(ctx context.Context, matchID string, trackID tracks.ID) ([]TrackingRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT time, track_id, team_id, x_coord, y_coord, speed, is_sprinting
		FROM tracking_data WHERE match_id = ? AND track_id = ?
		ORDER BY time`, matchID, int(trackID))
	if err != nil {
		return nil, errors.Wrap(err, "can't query tracking data")
	}
	defer rows.Close()
	var out []TrackingRow
	for rows.Next() {
		var (
			r  TrackingRow
			id int
		)
		if err := rows.Scan(&r.Time, &id, &r.TeamID, &r.X, &r.Y, &r.SpeedKmh, &r.IsSprinting); err != nil {
			return nil, errors.Wrap(err, "can't scan tracking row")
		}
		r.TrackID = tracks.ID(id)
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "can't iterate tracking data")
}
