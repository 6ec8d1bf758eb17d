package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
)

// Collection is a typed wrapper over a Firestore collection. Documents encode
// and decode through the struct's firestore tags.
type Collection[T any] struct {
	Ref *firestore.CollectionRef
}

func (c *Collection[T]) Doc(id string) *DocumentRef[T] {
	return &DocumentRef[T]{Ref: c.Ref.Doc(id)}
}

// Query starts a predicate query on the collection.
func (c *Collection[T]) Query() firestore.Query {
	return c.Ref.Query
}

type DocumentRef[T any] struct {
	Ref *firestore.DocumentRef
}

func (d *DocumentRef[T]) ID() string {
	return d.Ref.ID
}

// Create writes a new document and fails if it already exists.
func (d *DocumentRef[T]) Create(ctx context.Context, data *T) error {
	_, err := d.Ref.Create(ctx, data)
	return err
}

func (d *DocumentRef[T]) Set(ctx context.Context, data *T) error {
	_, err := d.Ref.Set(ctx, data)
	return err
}

// Update merges partial updates. Keys must match the firestore snake_case
// field names; nested fields use dotted paths.
func (d *DocumentRef[T]) Update(ctx context.Context, updates map[string]interface{}) error {
	_, err := d.Ref.Set(ctx, updates, firestore.MergeAll)
	return err
}

func (d *DocumentRef[T]) Delete(ctx context.Context) error {
	_, err := d.Ref.Delete(ctx)
	return err
}
