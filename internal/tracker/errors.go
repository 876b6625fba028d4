package tracker

// Protocol error codes. Workers switch on these, so the numbers are stable.
const (
	CodeTooManyWorkers    = 1
	CodeUnknownWorker     = 2
	CodeWorkerDisabled    = 3
	CodeMustCommitCurrent = 4
	CodeForbiddenBatch    = 5
	CodeEmptyBatchID      = 6
	CodeUnknownBatch      = 7
	CodeSizeMismatch      = 8
)

// ProtocolError is a rule violation attributable to the calling worker, as
// opposed to a server fault. BatchID is filled for codes that point the
// worker at a specific batch.
type ProtocolError struct {
	Code    int
	Message string
	BatchID string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

func errTooManyWorkers() error {
	return &ProtocolError{Code: CodeTooManyWorkers, Message: "too many workers for this address"}
}

func errUnknownWorker() error {
	return &ProtocolError{Code: CodeUnknownWorker, Message: "unknown worker"}
}

func errWorkerDisabled() error {
	return &ProtocolError{Code: CodeWorkerDisabled, Message: "worker is disabled"}
}

func errMustCommitCurrent(batchID string) error {
	return &ProtocolError{Code: CodeMustCommitCurrent, Message: "commit the current batch first", BatchID: batchID}
}

func errForbiddenBatch() error {
	return &ProtocolError{Code: CodeForbiddenBatch, Message: "batch is not assigned to this worker"}
}

func errEmptyBatchID() error {
	return &ProtocolError{Code: CodeEmptyBatchID, Message: "empty batch id"}
}

func errUnknownBatch() error {
	return &ProtocolError{Code: CodeUnknownBatch, Message: "unknown batch"}
}

func errSizeMismatch(batchID string) error {
	return &ProtocolError{Code: CodeSizeMismatch, Message: "content size mismatch", BatchID: batchID}
}
