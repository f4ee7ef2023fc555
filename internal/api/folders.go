package api

import (
	"net/http"

	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/folders"
	"github.com/kuitang/noteful/internal/sanitize"
	"github.com/kuitang/noteful/internal/urlutil"
)

func sanitizedFolder(f folders.Folder) folders.Folder {
	f.Name = sanitize.String(f.Name)
	return f
}

// withFolder resolves {id} to a folder before calling next, or fails with 404.
func (h *Handler) withFolder(next func(http.ResponseWriter, *http.Request, *folders.Folder) error) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, ok := pathID(r)
		if !ok {
			return errs.New(errs.NotFound, folders.MsgNotFound)
		}
		f, err := h.folders.Get(r.Context(), id)
		if err != nil {
			return err
		}
		return next(w, r, f)
	}
}

// ListFolders handles GET /folders
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) error {
	list, err := h.folders.List(r.Context())
	if err != nil {
		return err
	}
	out := make([]folders.Folder, len(list))
	for i, f := range list {
		out[i] = sanitizedFolder(f)
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

// CreateFolder handles POST /folders
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) error {
	var req folderCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	in, err := validateNewFolder(req)
	if err != nil {
		return err
	}

	f, err := h.folders.Create(r.Context(), in)
	if err != nil {
		return err
	}
	w.Header().Set("Location", urlutil.ChildLocation(r, f.ID))
	writeJSON(w, http.StatusCreated, sanitizedFolder(*f))
	return nil
}

// GetFolder handles GET /folders/{id}
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request, f *folders.Folder) error {
	writeJSON(w, http.StatusOK, sanitizedFolder(*f))
	return nil
}

// UpdateFolder handles PATCH /folders/{id}
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request, f *folders.Folder) error {
	var req folderPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	patch, err := validateFolderPatch(req)
	if err != nil {
		return err
	}
	if err := h.folders.Update(r.Context(), f.ID, patch); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DeleteFolder handles DELETE /folders/{id}
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request, f *folders.Folder) error {
	if err := h.folders.Delete(r.Context(), f.ID); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
