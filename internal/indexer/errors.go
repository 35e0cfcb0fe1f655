package indexer

import "fmt"

// StoreWriteError is returned when a document or chunk write fails.
// It is fatal for the ingest that triggered it; retry policy belongs to the
// caller. Stage identifies the failed write: "document", "chunks" or "vectors".
type StoreWriteError struct {
	Stage string
	Err   error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store write failed at stage %q: %v", e.Stage, e.Err)
}

func (e *StoreWriteError) Unwrap() error {
	return e.Err
}
