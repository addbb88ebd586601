package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-configtypes/pkg/activity"
	"github.com/google/uuid"
)

var ErrETagMismatch = errors.New("snapshot: etag mismatch")

var ErrNilSnapshot = errors.New("snapshot: snapshot is nil")

// Meta is holder-owned metadata describing the active snapshot.
type Meta struct {
	SnapshotID string    `json:"snapshot_id,omitempty"`
	ETag       string    `json:"etag,omitempty"`
	Source     string    `json:"source,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// SwapListener observes a completed swap. prev is nil for the first swap.
type SwapListener func(prev, next *Memory)

// SwapOptions carry the optional parts of a swap.
type SwapOptions struct {
	// IfMatch, when set, must equal the current ETag or the swap fails.
	IfMatch string
	Source  string
	ActorID string
}

// HolderOption configures a Holder.
type HolderOption func(*Holder)

// WithEmitter emits snapshot lifecycle events through emitter.
func WithEmitter(emitter *activity.Emitter) HolderOption {
	return func(h *Holder) {
		h.emitter = emitter
	}
}

// WithSwapListener registers fn to run after every swap.
func WithSwapListener(fn SwapListener) HolderOption {
	return func(h *Holder) {
		if fn != nil {
			h.listeners = append(h.listeners, fn)
		}
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) HolderOption {
	return func(h *Holder) {
		if now != nil {
			h.now = now
		}
	}
}

type holderEntry struct {
	snap *Memory
	meta Meta
}

// Holder publishes the current snapshot. Readers never block: Current returns
// whichever snapshot was active at the call, and that instance never changes.
// Swaps are serialized.
type Holder struct {
	current atomic.Pointer[holderEntry]

	mu        sync.Mutex
	listeners []SwapListener
	emitter   *activity.Emitter
	now       func() time.Time
}

// NewHolder returns an empty holder. Current returns nil until the first swap.
func NewHolder(opts ...HolderOption) *Holder {
	h := &Holder{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Current returns the active snapshot, or nil before the first swap.
func (h *Holder) Current() *Memory {
	if h == nil {
		return nil
	}
	if entry := h.current.Load(); entry != nil {
		return entry.snap
	}
	return nil
}

// Meta returns metadata for the active snapshot.
func (h *Holder) Meta() Meta {
	if h == nil {
		return Meta{}
	}
	if entry := h.current.Load(); entry != nil {
		return entry.meta
	}
	return Meta{}
}

// Swap replaces the active snapshot and returns its new metadata. Listeners
// run after the new snapshot is visible. Activity hook failures do not undo
// the swap.
func (h *Holder) Swap(ctx context.Context, next *Memory, opts SwapOptions) (Meta, error) {
	if next == nil {
		return Meta{}, ErrNilSnapshot
	}

	h.mu.Lock()
	prev := h.current.Load()
	if opts.IfMatch != "" && (prev == nil || prev.meta.ETag != opts.IfMatch) {
		h.mu.Unlock()
		return Meta{}, ErrETagMismatch
	}
	meta := Meta{
		SnapshotID: next.SnapshotID(),
		ETag:       uuid.NewString(),
		Source:     opts.Source,
		UpdatedAt:  h.now(),
	}
	h.current.Store(&holderEntry{snap: next, meta: meta})
	listeners := append([]SwapListener(nil), h.listeners...)
	h.mu.Unlock()

	var prevSnap *Memory
	var prevID string
	if prev != nil {
		prevSnap = prev.snap
		prevID = prev.meta.SnapshotID
	}
	for _, listener := range listeners {
		listener(prevSnap, next)
	}

	_ = h.emitter.Emit(ctx, activity.BuildSnapshotSwappedEvent(activity.SnapshotEventInput{
		ActorID:    opts.ActorID,
		SnapshotID: meta.SnapshotID,
		PreviousID: prevID,
		Source:     opts.Source,
		TypeCount:  next.Len(),
		ETag:       meta.ETag,
		OccurredAt: meta.UpdatedAt,
	}))
	return meta, nil
}

// LoadFile reads the document at path and swaps it in. On failure the active
// snapshot is kept and a reload_failed event is emitted.
func (h *Holder) LoadFile(ctx context.Context, path string) (Meta, error) {
	next, err := LoadFile(path)
	if err != nil {
		_ = h.emitter.Emit(ctx, activity.BuildSnapshotReloadFailedEvent(activity.SnapshotEventInput{
			SnapshotID: h.Meta().SnapshotID,
			Source:     path,
			Err:        err,
		}))
		return Meta{}, err
	}
	_ = h.emitter.Emit(ctx, activity.BuildSnapshotLoadedEvent(activity.SnapshotEventInput{
		SnapshotID: next.SnapshotID(),
		Source:     path,
		TypeCount:  next.Len(),
	}))
	return h.Swap(ctx, next, SwapOptions{Source: path})
}
