package tracker

// Event payloads published on the bus. They identify batches and counts
// only; worker ids are bearer credentials and never leave the server.

type BatchDispatchedEvent struct {
	BatchID string `json:"batch_id"`
}

type BatchVerifiedEvent struct {
	BatchID string `json:"batch_id"`
}

type BatchOverwrittenEvent struct {
	BatchID string `json:"batch_id"`
	Version int64  `json:"version"`
}

type BatchFinalizedEvent struct {
	BatchID     string `json:"batch_id"`
	ContentSize int64  `json:"content_size"`
}

type SubmissionStagedEvent struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}
