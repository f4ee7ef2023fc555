// Package folders stores named folders that notes are filed under.
package folders

import (
	"context"
	"fmt"

	"github.com/kuitang/noteful/internal/db"
	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/obs"
)

// MsgNotFound is the client-facing message for a missing folder.
const MsgNotFound = "Folder Not Found"

// Folder is a named grouping that notes reference by id.
type Folder struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewFolder is a validated create request.
type NewFolder struct {
	Name string
}

// FolderPatch is a validated partial update. Empty fields are left unchanged.
type FolderPatch struct {
	Name string
}

func (p FolderPatch) values() []db.Value {
	var vals []db.Value
	if p.Name != "" {
		vals = append(vals, db.Value{Column: "name", Arg: p.Name})
	}
	return vals
}

// Table is the folders table layout.
var Table = db.Table{Name: "folders", Columns: []string{"name"}}

func scanFolder(s db.Scanner) (Folder, error) {
	var f Folder
	err := s.Scan(&f.ID, &f.Name)
	return f, err
}

// Service performs one store operation per call.
type Service struct {
	store *db.Store
}

// NewService creates a folders service backed by store.
func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

// List returns all folders ordered by id.
func (s *Service) List(ctx context.Context) ([]Folder, error) {
	folders, err := db.List(ctx, s.store, Table, scanFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// Get returns the folder with the given id or an errs.NotFound error.
func (s *Service) Get(ctx context.Context, id int64) (*Folder, error) {
	f, err := db.GetByID(ctx, s.store, Table, id, scanFolder)
	if db.IsNoRows(err) {
		return nil, errs.Wrap(errs.NotFound, MsgNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}
	return &f, nil
}

// Create inserts a folder and returns it with its new id.
func (s *Service) Create(ctx context.Context, in NewFolder) (*Folder, error) {
	id, err := db.Insert(ctx, s.store, Table, []db.Value{{Column: "name", Arg: in.Name}})
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	obs.From(ctx).Info("folder created", "pkg", "folders", "folder_id", id)
	return &Folder{ID: id, Name: in.Name}, nil
}

// Update writes the non-empty fields of patch. Updating a missing id is not an error.
func (s *Service) Update(ctx context.Context, id int64, patch FolderPatch) error {
	vals := patch.values()
	if len(vals) == 0 {
		return errs.Invalid("Request body must contain a 'name'")
	}
	if _, err := db.Update(ctx, s.store, Table, id, vals); err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	return nil
}

// Delete removes the folder. Deleting a missing id is not an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := db.Delete(ctx, s.store, Table, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	obs.From(ctx).Info("folder deleted", "pkg", "folders", "folder_id", id, "rows", n)
	return nil
}
