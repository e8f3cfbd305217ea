package rec

import "errors"

// Errors reported by schema construction and the accessor protocol. Raise
// sites wrap these with attribute and schema context; callers match with
// errors.Is. Boolean predicates (WellFormed, Valid, Has, Defined) never
// return errors; false is the answer for malformed input.
var (
	// ErrMissingSpec is returned when a schema build is requested with
	// neither attribute specifications nor a well-formed base record.
	ErrMissingSpec = errors.New("missing attribute specification")

	// ErrUnknownAttr is returned when an accessor is given a name that is
	// not declared by the record's schema.
	ErrUnknownAttr = errors.New("unknown attribute")

	// ErrTypeMismatch is returned by Set when the new value fails
	// validation against the attribute's declared type.
	ErrTypeMismatch = errors.New("value does not match declared type")

	// ErrSchemaSlot is returned on an attempt to write the reserved schema
	// slot through Set or Unset.
	ErrSchemaSlot = errors.New("cannot modify schema slot")

	// ErrInvalidType is returned when a type tag outside the closed
	// six-member set is used where validation is required.
	ErrInvalidType = errors.New("invalid type tag")
)
