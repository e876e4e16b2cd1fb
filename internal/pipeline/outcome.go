package pipeline

// Kind classifies the result of one pipeline run.
type Kind int

const (
	// Processed means one item was published and marked posted.
	Processed Kind = iota
	// EmptyQueue means no unposted item existed; the scheduler uses this to
	// stop scheduling the account.
	EmptyQueue
	// Failed means a stage aborted the run.
	Failed
)

// Exit codes reported to the external scheduler. The empty-queue code is a
// distinct success-like outcome, not an error.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitEmptyQueue = 99
)

// Outcome is the tri-state result of a run.
type Outcome struct {
	Kind Kind
	// Stage names the stage that failed; empty unless Kind is Failed.
	Stage string
	// ItemID is the processed or attempted item; zero for EmptyQueue.
	ItemID int64
	// MediaID is the remote id returned on successful publish.
	MediaID string
	Err     error
}

// ExitCode maps the outcome onto the process exit convention.
func (o Outcome) ExitCode() int {
	switch o.Kind {
	case Processed:
		return ExitOK
	case EmptyQueue:
		return ExitEmptyQueue
	default:
		return ExitFailure
	}
}

func processed(itemID int64, mediaID string) Outcome {
	return Outcome{Kind: Processed, ItemID: itemID, MediaID: mediaID}
}

func emptyQueue() Outcome {
	return Outcome{Kind: EmptyQueue}
}

func failed(stage string, itemID int64, err error) Outcome {
	return Outcome{Kind: Failed, Stage: stage, ItemID: itemID, Err: err}
}
