package project

import (
	"context"
	"fmt"

	"dubforge/internal/timeline"
)

// SaveTimeline replaces the persisted segments of a project with the given
// timeline, preserving playback order.
func (s *Store) SaveTimeline(ctx context.Context, projectID int64, tl *timeline.Timeline) error {
	if tl == nil {
		return fmt.Errorf("timeline required")
	}
	ctx = ensureContext(ctx)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin timeline tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("clear segments: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO segments (project_id, idx, position, start_seconds, end_seconds, source_text, dub_text, tempo, offset_seconds, audio_path, voice)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare segment insert: %w", err)
		}
		defer stmt.Close()

		for position, seg := range tl.Segments() {
			_, err := stmt.ExecContext(ctx, projectID, seg.Index, position,
				seg.Start, seg.End, seg.SourceText, seg.DubText,
				seg.Tempo, seg.Offset, seg.AudioPath, seg.Voice)
			if err != nil {
				return fmt.Errorf("insert segment %d: %w", seg.Index, err)
			}
		}

		now := utcNow()
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`,
			formatTime(now), projectID); err != nil {
			return fmt.Errorf("touch project: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit timeline: %w", err)
		}
		return nil
	})
}

// LoadTimeline reconstructs a project's timeline in stored playback order.
// A project with no segments yields an empty timeline.
func (s *Store) LoadTimeline(ctx context.Context, projectID int64) (*timeline.Timeline, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT idx, start_seconds, end_seconds, source_text, dub_text, tempo, offset_seconds, audio_path, voice
		 FROM segments WHERE project_id = ? ORDER BY position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load segments: %w", err)
	}
	defer rows.Close()

	tl := timeline.New()
	for rows.Next() {
		var seg timeline.Segment
		err := rows.Scan(&seg.Index, &seg.Start, &seg.End, &seg.SourceText, &seg.DubText,
			&seg.Tempo, &seg.Offset, &seg.AudioPath, &seg.Voice)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if err := tl.Add(seg); err != nil {
			return nil, fmt.Errorf("restore segment %d: %w", seg.Index, err)
		}
	}
	return tl, rows.Err()
}
