package publish

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrIncomplete reports a batch in which some directories
// failed.
var ErrIncomplete = errors.New("incomplete")

// Failure is one directory that could not be processed.
type Failure struct {
	Dir string
	// Output is the captured runtime output, verbatim.
	Output string
	Err    error
}

// Summary tallies a batch. Skipped directories had nothing
// publishable upstream and do not count as failures.
type Summary struct {
	Action    string
	Total     int
	Succeeded int
	Skipped   int
	Failures  []Failure
	// Images lists the references built or pushed.
	Images []string
}

// Err returns ErrIncomplete wrapped with the tally when fewer
// directories succeeded or were skipped than were given.
func (s Summary) Err() error {
	if s.Succeeded+s.Skipped >= s.Total {
		return nil
	}

	errs := make([]error, 0, len(s.Failures))
	for _, f := range s.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Dir, f.Err))
	}

	return fmt.Errorf(
		"%s %w: only %d/%d succeeded: %w",
		s.Action, ErrIncomplete, s.Succeeded, s.Total, errors.Join(errs...),
	)
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"%s complete: %d/%d succeeded, %d skipped, %d failed",
		s.Action, s.Succeeded, s.Total, s.Skipped, len(s.Failures),
	)
}

func (s *Summary) fail(dir, output string, err error) {
	slog.Error(
		s.Action+" failed",
		"dir", dir,
		"error", err,
		"output", output,
	)

	s.Failures = append(s.Failures, Failure{
		Dir:    dir,
		Output: output,
		Err:    err,
	})
}
