package repository

import (
	"context"
	"fmt"

	"github.com/VADemon/archive/internal/models"
)

// submissionTables maps a submission kind to its staging and authoritative
// table pair. Table names come from this map only, never from request input.
var submissionTables = map[models.SubmissionKind]struct {
	staging       string
	authoritative string
}{
	models.SubmissionVideos:    {"user_videos", "videos"},
	models.SubmissionPlaylists: {"user_playlists", "playlists"},
	models.SubmissionChannels:  {"user_channels", "channels"},
}

// StageSubmissions inserts the given ids into the staging table for kind,
// skipping any id already present in either the authoritative or the staging
// table. Returns exactly the ids that were inserted.
func (r *Repository) StageSubmissions(ctx context.Context, kind models.SubmissionKind, ids []string) ([]string, error) {
	tables, ok := submissionTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown submission kind %q", kind)
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id)
		SELECT DISTINCT v.id FROM unnest($1::text[]) AS v(id)
		WHERE NOT EXISTS (SELECT 1 FROM %s a WHERE a.id = v.id)
		ON CONFLICT (id) DO NOTHING
		RETURNING id`, tables.staging, tables.authoritative)

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to stage submissions: %w", err)
	}
	defer rows.Close()

	inserted := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		inserted = append(inserted, id)
	}
	return inserted, rows.Err()
}
