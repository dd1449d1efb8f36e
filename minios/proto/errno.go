package proto

// Errno is a negative system call result.
type Errno int64

const (
	ErrGeneric           Errno = -1
	ErrNoFreeSlots       Errno = -2
	ErrImageLoad         Errno = -3
	ErrNameTooLong       Errno = -4
	ErrDuplicateName     Errno = -5
	ErrNoDescriptor      Errno = -6
	ErrNotFound          Errno = -7
	ErrInvalidDescriptor Errno = -8
	ErrAlreadyLocked     Errno = -9
	ErrNotLocked         Errno = -10
	ErrInvalidArgument   Errno = -11
)

func (e Errno) String() string {
	switch e {
	case ErrGeneric:
		return "generic"
	case ErrNoFreeSlots:
		return "no_free_slots"
	case ErrImageLoad:
		return "image_load"
	case ErrNameTooLong:
		return "name_too_long"
	case ErrDuplicateName:
		return "duplicate_name"
	case ErrNoDescriptor:
		return "no_descriptor"
	case ErrNotFound:
		return "not_found"
	case ErrInvalidDescriptor:
		return "invalid_descriptor"
	case ErrAlreadyLocked:
		return "already_locked"
	case ErrNotLocked:
		return "not_locked"
	case ErrInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

func (e Errno) Error() string {
	return "minios: " + e.String()
}

// Result converts a raw result register into a value or an Errno.
func Result(v int64) (int64, error) {
	if v < 0 {
		return v, Errno(v)
	}
	return v, nil
}
