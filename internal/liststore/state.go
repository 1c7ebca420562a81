package liststore

// SyncState tracks whether a store has been reconciled for its current
// identity. Only Reconcile and OnAuthChange move it.
type SyncState int

const (
	Unsynced SyncState = iota
	Syncing
	Synced
)

func (s SyncState) String() string {
	switch s {
	case Unsynced:
		return "unsynced"
	case Syncing:
		return "syncing"
	case Synced:
		return "synced"
	default:
		return "unknown"
	}
}

// Outcome says which branch a reconciliation took.
type Outcome int

const (
	// OutcomeSkipped: already synced or a run is in flight.
	OutcomeSkipped Outcome = iota
	OutcomeSignedOut
	// OutcomeFirstSync: no remote record, local list adopted and uploaded.
	OutcomeFirstSync
	OutcomeEqual
	// OutcomeResolved: lists differed and the policy resolved the conflict.
	OutcomeResolved
	// OutcomeFailed: remote unreadable, in-memory list kept.
	OutcomeFailed
	// OutcomeSuperseded: identity changed while the remote read was in flight.
	OutcomeSuperseded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSignedOut:
		return "signed_out"
	case OutcomeFirstSync:
		return "first_sync"
	case OutcomeEqual:
		return "equal"
	case OutcomeResolved:
		return "resolved"
	case OutcomeFailed:
		return "failed"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Result reports one Reconcile call.
type Result struct {
	Outcome Outcome
	UserID  string
	// Items is the length of the adopted list.
	Items int
	// Replayed counts mutations issued during the sync and applied on top
	// of the resolved list.
	Replayed int
	Err      error
}
