// Package notes stores notes and files them under folders by id.
package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/kuitang/noteful/internal/db"
	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/obs"
)

// Service handles note CRUD operations, one store operation per call.
type Service struct {
	store *db.Store
	now   func() time.Time
}

// NewService creates a new notes service.
func NewService(store *db.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns all notes ordered by id.
func (s *Service) List(ctx context.Context) ([]Note, error) {
	notes, err := db.List(ctx, s.store, Table, scanNote)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// Get retrieves a note by id or returns an errs.NotFound error.
func (s *Service) Get(ctx context.Context, id int64) (*Note, error) {
	n, err := db.GetByID(ctx, s.store, Table, id, scanNote)
	if db.IsNoRows(err) {
		return nil, errs.Wrap(errs.NotFound, MsgNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read note: %w", err)
	}
	return &n, nil
}

// Create inserts a note stamped with the current UTC time.
// The folder reference is not checked against the folders table.
func (s *Service) Create(ctx context.Context, in NewNote) (*Note, error) {
	// Postgres keeps microseconds; truncate so the response matches a later read.
	modified := s.now().UTC().Truncate(time.Microsecond)

	id, err := db.Insert(ctx, s.store, Table, []db.Value{
		{Column: "name", Arg: in.Name},
		{Column: "modified", Arg: modified},
		{Column: "folderid", Arg: in.FolderID},
		{Column: "content", Arg: in.Content},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	obs.From(ctx).Info("note created", "pkg", "notes", "note_id", id, "folder_id", in.FolderID)

	return &Note{
		ID:       id,
		Name:     in.Name,
		Modified: modified,
		FolderID: in.FolderID,
		Content:  in.Content,
	}, nil
}

// Update writes the non-empty fields of patch. Updating a missing id is not an error.
func (s *Service) Update(ctx context.Context, id int64, patch NotePatch) error {
	vals := patch.values()
	if len(vals) == 0 {
		return errs.Invalid("Request body must content either 'name' or 'content'")
	}
	n, err := db.Update(ctx, s.store, Table, id, vals)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	obs.From(ctx).Info("note edited", "pkg", "notes", "note_id", id, "rows", n)
	return nil
}

// Delete removes a note. Deleting a missing id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := db.Delete(ctx, s.store, Table, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	obs.From(ctx).Info("note deleted", "pkg", "notes", "note_id", id, "rows", n)
	return nil
}
