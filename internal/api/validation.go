package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kuitang/noteful/internal/errs"
	"github.com/kuitang/noteful/internal/folders"
	"github.com/kuitang/noteful/internal/notes"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FolderRef is folderid as submitted: a JSON number or a numeric string.
// null, false and 0 read as absent.
type FolderRef string

// UnmarshalJSON keeps the literal text of non-string values so the numeric
// check can report them.
func (f *FolderRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FolderRef(s)
	default:
		if n, err := strconv.ParseFloat(string(b), 64); err == nil && n == 0 {
			*f = ""
			return nil
		}
		*f = FolderRef(b)
	}
	return nil
}

// maxExactFloat is the largest integer a float64 holds exactly.
const maxExactFloat = 1 << 53

// Int returns the folder id when the value is integral.
// Decimal, exponent ("3e2", "4.0") and 0x/0o/0b forms are accepted.
func (f FolderRef) Int() (int64, bool) {
	s := strings.TrimSpace(string(f))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		n, err := strconv.ParseInt(s, 0, 64)
		return n, err == nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(fl) || math.IsInf(fl, 0) || fl != math.Trunc(fl) || math.Abs(fl) > maxExactFloat {
		return 0, false
	}
	return int64(fl), true
}

type folderCreateRequest struct {
	Name string `json:"name" validate:"required"`
}

type folderPatchRequest struct {
	Name string `json:"name" validate:"required"`
}

type noteCreateRequest struct {
	Name     string    `json:"name" validate:"required"`
	FolderID FolderRef `json:"folderid" validate:"required"`
	Content  string    `json:"content" validate:"required"`
}

type notePatchRequest struct {
	Name    string `json:"name" validate:"required_without=Content"`
	Content string `json:"content" validate:"required_without=Name"`
}

// firstInvalidField runs the struct validator and returns the first failing
// field in declaration order, or nil when v is valid.
func firstInvalidField(v any) (validator.FieldError, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0], nil
	}
	return nil, fmt.Errorf("validate %T: %w", v, err)
}

func validateNewFolder(req folderCreateRequest) (folders.NewFolder, error) {
	fe, err := firstInvalidField(req)
	if err != nil {
		return folders.NewFolder{}, err
	}
	if fe != nil {
		return folders.NewFolder{}, errs.Invalid("'Name' is required")
	}
	return folders.NewFolder{Name: req.Name}, nil
}

func validateFolderPatch(req folderPatchRequest) (folders.FolderPatch, error) {
	fe, err := firstInvalidField(req)
	if err != nil {
		return folders.FolderPatch{}, err
	}
	if fe != nil {
		return folders.FolderPatch{}, errs.Invalid("Request body must contain a 'name'")
	}
	return folders.FolderPatch{Name: req.Name}, nil
}

// validateNewNote checks presence of name, folderid and content in that
// order before checking that folderid is a number.
func validateNewNote(req noteCreateRequest) (notes.NewNote, error) {
	fe, err := firstInvalidField(req)
	if err != nil {
		return notes.NewNote{}, err
	}
	if fe != nil {
		return notes.NewNote{}, errs.Invalid(fmt.Sprintf("'%s' is required", fe.Field()))
	}
	folderID, ok := req.FolderID.Int()
	if !ok {
		return notes.NewNote{}, errs.Invalid("'folderid' must be a number")
	}
	return notes.NewNote{Name: req.Name, FolderID: folderID, Content: req.Content}, nil
}

func validateNotePatch(req notePatchRequest) (notes.NotePatch, error) {
	fe, err := firstInvalidField(req)
	if err != nil {
		return notes.NotePatch{}, err
	}
	if fe != nil {
		return notes.NotePatch{}, errs.Invalid("Request body must content either 'name' or 'content'")
	}
	return notes.NotePatch{Name: req.Name, Content: req.Content}, nil
}
