package domain

import (
	"fmt"

	"github.com/code19m/errx"
)

// Error codes shared by every layer. HTTP status mapping lives in interfaces/http/common.
const (
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeStorageWrite         = "STORAGE_WRITE_FAILED"
	CodeNotOwner             = "NOT_STORE_OWNER"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidCoordinates   = "INVALID_COORDINATES"
	CodeValidation           = "VALIDATION_FAILED"
	CodeSlugConflict         = "SLUG_CONFLICT"
)

// NewUnsupportedMediaTypeError reports an upload that is not an image we can process.
func NewUnsupportedMediaTypeError(mimeType string) error {
	return errx.New(
		fmt.Sprintf("unsupported media type %q: only images are allowed", mimeType),
		errx.WithCode(CodeUnsupportedMediaType),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"mime_type": mimeType}),
	)
}

// NewStorageWriteError wraps a failed photo write.
func NewStorageWriteError(err error) error {
	return errx.Wrap(err, errx.WithCode(CodeStorageWrite), errx.WithType(errx.T_Internal))
}

// NewOwnershipError is returned when a requester tries to mutate a store they did not create.
func NewOwnershipError(storeID string) error {
	return errx.New(
		"you must own the store to edit it",
		errx.WithCode(CodeNotOwner),
		errx.WithType(errx.T_Forbidden),
		errx.WithDetails(errx.D{"store_id": storeID}),
	)
}

// NewNotFoundError reports a lookup miss for the given kind ("store", "user") and key.
func NewNotFoundError(kind, key string) error {
	return errx.New(
		fmt.Sprintf("%s not found", kind),
		errx.WithCode(CodeNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"kind": kind, "key": key}),
	)
}

// NewInvalidCoordinatesError reports a malformed geo query.
func NewInvalidCoordinatesError(reason string) error {
	return errx.New(
		"invalid coordinates: "+reason,
		errx.WithCode(CodeInvalidCoordinates),
		errx.WithType(errx.T_Validation),
	)
}

// NewValidationError carries per-field messages keyed by form field name.
func NewValidationError(fields map[string]string) error {
	m := make(errx.M, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return errx.New(
		"validation failed, see fields for details",
		errx.WithCode(CodeValidation),
		errx.WithType(errx.T_Validation),
		errx.WithFields(m),
	)
}

// NewSlugConflictError is returned when a unique slug could not be allocated.
func NewSlugConflictError(slug string) error {
	return errx.New(
		fmt.Sprintf("could not allocate a unique slug for %q", slug),
		errx.WithCode(CodeSlugConflict),
		errx.WithType(errx.T_Conflict),
	)
}

// IsNotFound reports whether err is a missing store or user.
func IsNotFound(err error) bool {
	return err != nil && errx.IsCodeIn(err, CodeNotFound)
}

// IsOwnershipError reports whether err rejects a non-owner edit.
func IsOwnershipError(err error) bool {
	return err != nil && errx.IsCodeIn(err, CodeNotOwner)
}

// IsUnsupportedMediaType reports whether err rejects an upload that is not an image.
func IsUnsupportedMediaType(err error) bool {
	return err != nil && errx.IsCodeIn(err, CodeUnsupportedMediaType)
}

// IsStorageWriteError reports whether err is a failed photo write.
func IsStorageWriteError(err error) bool {
	return err != nil && errx.IsCodeIn(err, CodeStorageWrite)
}

// IsInvalidCoordinates reports whether err rejects a longitude/latitude pair.
func IsInvalidCoordinates(err error) bool {
	return err != nil && errx.IsCodeIn(err, CodeInvalidCoordinates)
}

// IsValidationError reports whether err carries per-field validation messages.
func IsValidationError(err error) bool {
	return err != nil && errx.IsCodeIn(err, CodeValidation)
}

// IsSlugConflict reports whether err means no unique slug could be allocated.
func IsSlugConflict(err error) bool {
	return err != nil && errx.IsCodeIn(err, CodeSlugConflict)
}
