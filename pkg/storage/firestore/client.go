// Package firestore is the Firestore-backed persistence layer. The backend
// offers only predicate queries (equality, range, limit); all consistency
// rules live in the callers.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/types"
)

type Client struct {
	fs *firestore.Client
}

func NewClient(ctx context.Context, projectID string) (*Client, error) {
	fs, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Client{fs: fs}, nil
}

func (c *Client) Close() error {
	return c.fs.Close()
}

func (c *Client) Sessions() *Collection[types.CanonicalSession] {
	return &Collection[types.CanonicalSession]{Ref: c.fs.Collection(shared.CollectionSessions)}
}

func (c *Client) Wellness() *Collection[types.WellnessRecord] {
	return &Collection[types.WellnessRecord]{Ref: c.fs.Collection(shared.CollectionWellness)}
}

func (c *Client) SyncRuns() *Collection[types.SyncRun] {
	return &Collection[types.SyncRun]{Ref: c.fs.Collection(shared.CollectionSyncRuns)}
}

// SyncConfigs documents are keyed by athlete id.
func (c *Client) SyncConfigs() *Collection[types.SyncConfig] {
	return &Collection[types.SyncConfig]{Ref: c.fs.Collection(shared.CollectionSyncConfigs)}
}
