package notes

import (
	"time"

	"github.com/kuitang/noteful/internal/db"
)

// MsgNotFound is the client-facing message for a missing note.
const MsgNotFound = "Note Not Found"

// Note is a named, timestamped text entry filed under a folder.
type Note struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Modified time.Time `json:"modified"`
	FolderID int64     `json:"folderid"`
	Content  string    `json:"content"`
}

// NewNote is a validated create request.
type NewNote struct {
	Name     string
	FolderID int64
	Content  string
}

// NotePatch is a validated partial update. Only name and content can change;
// empty fields are left unchanged.
type NotePatch struct {
	Name    string
	Content string
}

func (p NotePatch) values() []db.Value {
	var vals []db.Value
	if p.Name != "" {
		vals = append(vals, db.Value{Column: "name", Arg: p.Name})
	}
	if p.Content != "" {
		vals = append(vals, db.Value{Column: "content", Arg: p.Content})
	}
	return vals
}

// Table is the notes table layout.
var Table = db.Table{Name: "notes", Columns: []string{"name", "modified", "folderid", "content"}}

func scanNote(s db.Scanner) (Note, error) {
	var n Note
	if err := s.Scan(&n.ID, &n.Name, &n.Modified, &n.FolderID, &n.Content); err != nil {
		return Note{}, err
	}
	n.Modified = n.Modified.UTC()
	return n, nil
}
