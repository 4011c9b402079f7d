package build

import "errors"

var (
	// ErrScriptMissing is returned when no script is selected or the path does not exist.
	ErrScriptMissing = errors.New("script not found")

	// ErrScriptNotFile is returned when the script path names a directory or special file.
	ErrScriptNotFile = errors.New("script is not a regular file")
)

// WarnIconInvalid is logged when an icon path is set but cannot be used.
const WarnIconInvalid = "icon invalid or missing extension; building without an icon"
