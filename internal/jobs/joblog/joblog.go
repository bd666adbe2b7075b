// Package joblog writes the scheduled jobs' append-only log files.
//
// Each job owns one log target; entries are never rewritten or deleted.
// The file is opened fresh per write (no handle is held across job
// invocations) and all lines of one call go out in a single O_APPEND write,
// so concurrent invocations of the same job never interleave partial lines.
package joblog

import (
	"fmt"
	"os"
	"strings"
)

// Append appends the given lines, each terminated with a newline, to the
// file at path, creating it if needed.
func Append(path string, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("joblog: open %q: %w", path, err)
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	_, werr := f.WriteString(b.String())
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("joblog: append to %q: %w", path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("joblog: close %q: %w", path, cerr)
	}
	return nil
}
