package service

import (
	"context"
	"sync"
	"sync/atomic"

	"viralcut/internal/types"
)

// jobState tracks one in-flight job. The snapshot pointer gives pollers a
// torn-free view without blocking the writer; writes are serialized through
// mu so render goroutines can report progress safely.
type jobState struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[types.JobSnapshot]

	cancel           context.CancelFunc
	cancelRequested  atomic.Bool
	renderingStarted atomic.Bool
}

// In-memory registry of in-flight job states (jobId -> *jobState)
var jobStates sync.Map

func registerJobState(jobId string, snap *types.JobSnapshot) *jobState {
	st := &jobState{}
	st.snapshot.Store(snap)
	jobStates.Store(jobId, st)
	return st
}

func lookupJobState(jobId string) (*jobState, bool) {
	val, ok := jobStates.Load(jobId)
	if !ok {
		return nil, false
	}
	return val.(*jobState), true
}

func dropJobState(jobId string) {
	jobStates.Delete(jobId)
}

// publish swaps in a new snapshot while enforcing progress monotonicity:
// a stale writer can never move the bar backwards.
func (st *jobState) publish(snap *types.JobSnapshot) *types.JobSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.publishLocked(snap)
}

// publishLocked is publish for callers already holding mu, so the snapshot
// swap and the durable write can happen under one critical section.
func (st *jobState) publishLocked(snap *types.JobSnapshot) *types.JobSnapshot {
	if prev := st.snapshot.Load(); prev != nil && snap.Progress < prev.Progress && !snap.Stage.Terminal() {
		snap.Progress = prev.Progress
	}
	st.snapshot.Store(snap)
	return snap
}

func (st *jobState) current() *types.JobSnapshot {
	return st.snapshot.Load()
}

func (st *jobState) setCancelFunc(cancel context.CancelFunc) {
	st.mu.Lock()
	st.cancel = cancel
	st.mu.Unlock()
}

func (st *jobState) triggerCancel() {
	st.mu.Lock()
	cancel := st.cancel
	st.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
