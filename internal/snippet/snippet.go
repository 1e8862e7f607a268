// Package snippet defines the snippet entity and its input types.
package snippet

import (
	"fmt"
	"unicode/utf8"

	"github.com/offstack/offstack/internal/errors"
)

// Snippet represents a stored unit of captured or authored text.
type Snippet struct {
	// ID is a ULID assigned by the store at creation, never by the caller
	ID string `json:"id"`

	// Title is a required, non-empty human-readable label
	Title string `json:"title"`

	// Code is the snippet body; required but may be the empty string
	Code string `json:"code"`

	// Language is a required free-form tag (e.g. "javascript")
	Language string `json:"language"`

	// Description is an optional markdown note (nullable)
	Description *string `json:"description,omitempty"`

	// Tags is an optional ordered tag list (stored as a JSON blob)
	Tags []string `json:"tags,omitempty"`

	// FolderID is a weak reference to a folder; no ownership is enforced here
	FolderID *string `json:"folder_id,omitempty"`

	// IsFavorite defaults to false
	IsFavorite bool `json:"is_favorite"`

	// CreatedAt is set once at creation (ident.TimeLayout)
	CreatedAt string `json:"created_at"`

	// UpdatedAt is refreshed on every successful update
	UpdatedAt string `json:"updated_at"`
}

// CreateInput contains the caller-supplied fields for a new snippet.
type CreateInput struct {
	Title       string
	Code        string
	Language    string
	Description *string
	Tags        []string
	FolderID    *string
}

// UpdateInput is a patch: nil fields are left untouched, present fields
// replace the stored value.
type UpdateInput struct {
	Title       *string
	Code        *string
	Language    *string
	Description *string
	Tags        *[]string
	FolderID    *string
	IsFavorite  *bool
}

// Empty reports whether the patch carries no field at all.
func (p UpdateInput) Empty() bool {
	return p.Title == nil && p.Code == nil && p.Language == nil &&
		p.Description == nil && p.Tags == nil && p.FolderID == nil &&
		p.IsFavorite == nil
}

// TouchesText reports whether the patch changes any field covered by the
// search index.
func (p UpdateInput) TouchesText() bool {
	return p.Title != nil || p.Code != nil || p.Description != nil
}

// ValidateCreate checks required fields and the configured size cap.
func ValidateCreate(input CreateInput, maxChars int) error {
	if input.Title == "" {
		return errors.NewValidation("title is required")
	}
	if input.Language == "" {
		return errors.NewValidation("language is required")
	}
	if maxChars > 0 && utf8.RuneCountInString(input.Code) > maxChars {
		return errors.NewValidation(fmt.Sprintf("code exceeds maximum size of %d characters", maxChars))
	}
	return nil
}

// ValidateUpdate checks that present patch fields keep the entity valid.
// An empty patch is allowed; it only refreshes updated_at.
func ValidateUpdate(patch UpdateInput, maxChars int) error {
	if patch.Title != nil && *patch.Title == "" {
		return errors.NewValidation("title must not be empty")
	}
	if patch.Language != nil && *patch.Language == "" {
		return errors.NewValidation("language must not be empty")
	}
	if patch.Code != nil && maxChars > 0 && utf8.RuneCountInString(*patch.Code) > maxChars {
		return errors.NewValidation(fmt.Sprintf("code exceeds maximum size of %d characters", maxChars))
	}
	return nil
}
