package mbox

import (
	"errors"
	"os"
)

// ErrNoMboxPath is returned when no mbox location is configured.
var ErrNoMboxPath = errors.New("unable to determine mbox path; missing MAIL environment variable")

// ResolvePath picks the mbox location: the command-line flag, then the
// config file, then $MAIL.
func ResolvePath(flag, configured string) (string, error) {
	switch {
	case flag != "":
		return flag, nil
	case configured != "":
		return configured, nil
	}
	if p := os.Getenv("MAIL"); p != "" {
		return p, nil
	}
	return "", ErrNoMboxPath
}
