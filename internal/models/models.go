package models

import (
	"time"
)

// Worker represents the 'workers' table
type Worker struct {
	ID            string     `json:"worker_id"`
	IP            string     `json:"-"`
	Reputation    int64      `json:"reputation"`
	Disabled      bool       `json:"disabled"`
	CurrentBatch  *string    `json:"current_batch,omitempty"`
	LastCommitted *time.Time `json:"last_committed,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// VideosPerBatch is the nominal batch capacity. The seeder slices the video
// corpus into chunks of this size and the stats estimates assume it.
const VideosPerBatch = 10000

// Batch represents the 'batches' table
type Batch struct {
	ID          string    `json:"batch_id"`
	StartCtid   string    `json:"-"`
	EndCtid     string    `json:"-"`
	Finished    bool      `json:"finished"`
	ContentSize *int64    `json:"content_size,omitempty"`
	Videos      []string  `json:"videos"` // Stored as TEXT[] in DB
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// BatchCounts holds the finished/unfinished split used by the dispatcher.
type BatchCounts struct {
	Finished   int64
	Unfinished int64
}

// VideoRef is one row of the authoritative corpus together with its physical
// position marker, consumed by the batch seeder.
type VideoRef struct {
	ID   string
	Ctid string
}

// SwarmStats is the payload served on /api/stats.
type SwarmStats struct {
	BatchCount              int64 `json:"batch_count"`
	BatchFinished           int64 `json:"batch_finished"`
	BatchRemaining          int64 `json:"batch_remaining"`
	ContentSize             int64 `json:"content_size"`
	EstimatedVideoCount     int64 `json:"estimated_video_count"`
	EstimatedVideoFinished  int64 `json:"estimated_video_finished"`
	EstimatedVideoRemaining int64 `json:"estimated_video_remaining"`
	WorkerCount             int64 `json:"worker_count"`
	WorkerActive            int64 `json:"worker_active"`
}

// SubmissionKind selects which staging table a community submission lands in.
type SubmissionKind string

const (
	SubmissionVideos    SubmissionKind = "videos"
	SubmissionPlaylists SubmissionKind = "playlists"
	SubmissionChannels  SubmissionKind = "channels"
)
