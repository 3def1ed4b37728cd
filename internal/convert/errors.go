package convert

import "errors"

// Fatal conditions. A run that fails with one of these writes no output.
var (
	ErrInvalidFolder    = errors.New("invalid folder path")
	ErrChatFileMissing  = errors.New("chat file not found")
	ErrFormatUndetected = errors.New("could not detect timestamp format")
)

var userMessages = []struct {
	err error
	msg string
}{
	{ErrInvalidFolder, "Invalid folder path."},
	{ErrChatFileMissing, "Chat file not found."},
	{ErrFormatUndetected, "Could not detect timestamp format."},
}

// Message returns the one-line message shown to the user for a fatal
// conversion error, and false for any other error.
func Message(err error) (string, bool) {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "", false
}
