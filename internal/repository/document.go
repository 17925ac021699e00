package repository

import (
	"context"

	"plagcheck/internal/model"
)

// DocumentRepository defines data access for the document ledger using SQL queries only.
// No business logic here, strictly persistence operations. Dedup semantics
// (insert-first with unique-violation fallback) are composed by the service layer
// from Create + FindByHash.
type DocumentRepository interface {
	// Create inserts a new ledger row. The caller provides ID and UploadedAt.
	// Inserting a file_hash that already exists fails with a unique-constraint
	// violation the caller can detect via IsUniqueViolation.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByHash returns the ledger row for a content fingerprint, or sql.ErrNoRows.
	FindByHash(ctx context.Context, hash string) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
