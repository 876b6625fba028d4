package tracker

import (
	"context"
	"regexp"

	"github.com/VADemon/archive/internal/eventbus"
	"github.com/VADemon/archive/internal/metrics"
	"github.com/VADemon/archive/internal/models"
)

var (
	videoIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	channelIDPattern = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
)

// Submit filters the community-submitted identifiers by kind and stages the
// admissible ones, returning exactly the ids that were new. Ids already in
// the authoritative or the staging table are silently skipped.
func (t *Tracker) Submit(ctx context.Context, kind models.SubmissionKind, ids []string) ([]string, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if acceptSubmission(kind, id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []string{}, nil
	}

	inserted, err := t.store.StageSubmissions(ctx, kind, valid)
	if err != nil {
		return nil, err
	}

	if len(inserted) > 0 {
		metrics.SubmissionsStagedTotal.WithLabelValues(string(kind)).Add(float64(len(inserted)))
		t.publish(eventbus.TypeSubmissionStaged, SubmissionStagedEvent{Kind: string(kind), Count: len(inserted)})
	}
	return inserted, nil
}

// acceptSubmission applies the per-kind identifier shape check. Playlist ids
// have no stable shape; only empty strings are rejected.
func acceptSubmission(kind models.SubmissionKind, id string) bool {
	switch kind {
	case models.SubmissionVideos:
		return videoIDPattern.MatchString(id)
	case models.SubmissionChannels:
		return channelIDPattern.MatchString(id)
	default:
		return id != ""
	}
}
