package activity

import (
	"strings"
	"time"
)

const (
	VerbSnapshotLoaded       = "config_schema.snapshot.loaded"
	VerbSnapshotSwapped      = "config_schema.snapshot.swapped"
	VerbSnapshotReloadFailed = "config_schema.snapshot.reload_failed"

	ObjectTypeSnapshot = "config_schema.snapshot"
)

// SnapshotEventInput describes the common fields of snapshot lifecycle events.
type SnapshotEventInput struct {
	ActorID    string
	TenantID   string
	Channel    string
	SnapshotID string
	PreviousID string
	Source     string
	TypeCount  int
	ETag       string
	Err        error
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildSnapshotLoadedEvent describes a snapshot read from its source.
func BuildSnapshotLoadedEvent(input SnapshotEventInput) Event {
	return buildSnapshotEvent(VerbSnapshotLoaded, input)
}

// BuildSnapshotSwappedEvent describes a snapshot replacing the active one.
func BuildSnapshotSwappedEvent(input SnapshotEventInput) Event {
	return buildSnapshotEvent(VerbSnapshotSwapped, input)
}

// BuildSnapshotReloadFailedEvent describes a reload that left the previous
// snapshot active.
func BuildSnapshotReloadFailedEvent(input SnapshotEventInput) Event {
	return buildSnapshotEvent(VerbSnapshotReloadFailed, input)
}

func buildSnapshotEvent(verb string, input SnapshotEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.SnapshotID != "" {
		set("snapshot_id", input.SnapshotID)
	}
	if input.PreviousID != "" {
		set("previous_snapshot_id", input.PreviousID)
	}
	if input.Source != "" {
		set("source", input.Source)
	}
	if input.TypeCount > 0 {
		set("type_count", input.TypeCount)
	}
	if input.ETag != "" {
		set("etag", input.ETag)
	}
	if input.Err != nil {
		set("error", input.Err.Error())
	}

	objectID := strings.TrimSpace(input.SnapshotID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Source)
	}
	if objectID == "" {
		objectID = ObjectTypeSnapshot
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeSnapshot,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
