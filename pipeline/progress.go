package pipeline

// ProgressEvent reports cumulative upload progress. Events are purely
// observational and never affect control flow.
type ProgressEvent struct {
	BytesDone  uint64
	BytesTotal uint64
}

// ProgressFunc receives progress events. The callback may be invoked
// concurrently and must be safe for concurrent use.
type ProgressFunc func(ProgressEvent)
