package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"darts/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// storageListPageSize is the largest page Nakama storage listing accepts.
const storageListPageSize = 100

// storageAccessor is the slice of runtime.NakamaModule the archive needs.
type storageAccessor interface {
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
	StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error)
}

// NakamaStorageArchive implements ports.MatchArchive with Nakama storage
// objects owned by the system user.
type NakamaStorageArchive struct {
	nk storageAccessor
}

// NewNakamaStorageArchive creates a new storage-backed archive.
func NewNakamaStorageArchive(nk storageAccessor) *NakamaStorageArchive {
	return &NakamaStorageArchive{nk: nk}
}

// finishedMatchKey orders keys newest first: storage lists by key ascending.
func finishedMatchKey(match ports.FinishedMatch) string {
	return fmt.Sprintf("%019d_%s", math.MaxInt64-match.EndedAt.UnixMilli(), match.MatchID)
}

// SaveFinishedMatch writes the record once. A second write for the same key
// is rejected by the "*" version guard.
func (a *NakamaStorageArchive) SaveFinishedMatch(ctx context.Context, match ports.FinishedMatch) error {
	if match.MatchID == "" {
		return fmt.Errorf("match id is required")
	}
	value, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal finished match: %w", err)
	}

	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      finishedMatchCollection,
			Key:             finishedMatchKey(match),
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return ports.ErrAlreadyArchived
		}
		return fmt.Errorf("failed to write finished match %s: %w", match.MatchID, err)
	}
	return nil
}

// ListFinishedMatches pages through the collection until limit records are read.
func (a *NakamaStorageArchive) ListFinishedMatches(ctx context.Context, limit int) ([]ports.FinishedMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	out := make([]ports.FinishedMatch, 0, limit)
	cursor := ""
	for len(out) < limit {
		pageSize := limit - len(out)
		if pageSize > storageListPageSize {
			pageSize = storageListPageSize
		}
		objects, next, err := a.nk.StorageList(ctx, "", "", finishedMatchCollection, pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list finished matches: %w", err)
		}
		for _, obj := range objects {
			var match ports.FinishedMatch
			if err := json.Unmarshal([]byte(obj.GetValue()), &match); err != nil {
				return nil, fmt.Errorf("failed to decode finished match %s: %w", obj.GetKey(), err)
			}
			out = append(out, match)
		}
		if next == "" || len(objects) == 0 {
			break
		}
		cursor = next
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ ports.MatchArchive = (*NakamaStorageArchive)(nil)
