package api

import (
	"net/http"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/notes"
	"github.com/kuitang/noteful/internal/sanitize"
	"github.com/kuitang/noteful/internal/urlutil"
)

func sanitizedNote(n notes.Note) notes.Note {
	n.Name = sanitize.String(n.Name)
	n.Content = sanitize.String(n.Content)
	return n
}

// withNote resolves {id} to a note before calling next, or fails with 404.
func (h *Handler) withNote(next func(http.ResponseWriter, *http.Request, *notes.Note) error) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, ok := pathID(r)
		if !ok {
			return errs.New(errs.NotFound, notes.MsgNotFound)
		}
		n, err := h.notes.Get(r.Context(), id)
		if err != nil {
			return err
		}
		return next(w, r, n)
	}
}

// ListNotes handles GET /notes
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) error {
	list, err := h.notes.List(r.Context())
	if err != nil {
		return err
	}
	out := make([]notes.Note, len(list))
	for i, n := range list {
		out[i] = sanitizedNote(n)
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

// CreateNote handles POST /notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) error {
	var req noteCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	in, err := validateNewNote(req)
	if err != nil {
		return err
	}

	n, err := h.notes.Create(r.Context(), in)
	if err != nil {
		return err
	}
	w.Header().Set("Location", urlutil.ChildLocation(r, n.ID))
	writeJSON(w, http.StatusCreated, sanitizedNote(*n))
	return nil
}

// GetNote handles GET /notes/{id}
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request, n *notes.Note) error {
	writeJSON(w, http.StatusOK, sanitizedNote(*n))
	return nil
}

// UpdateNote handles PATCH /notes/{id}. Only name and content are writable.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request, n *notes.Note) error {
	var req notePatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	patch, err := validateNotePatch(req)
	if err != nil {
		return err
	}
	if err := h.notes.Update(r.Context(), n.ID, patch); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DeleteNote handles DELETE /notes/{id}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request, n *notes.Note) error {
	if err := h.notes.Delete(r.Context(), n.ID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
