package parser

import (
	stderrors "errors"

	"github.com/tliron/commonlog"

	"gasguard/internal/errors"
	"gasguard/internal/ir"
)

var log = commonlog.GetLogger("gasguard.parser")

// ErrNoContract marks source that carries no contract declaration at all.
// It is wrapped in a StructuralParseError.
var ErrNoContract = stderrors.New("no contract declaration found")

// ParseResult contains the recovered contract and the units that had to be
// skipped while recovering it.
type ParseResult struct {
	Contract    *ir.Contract
	Diagnostics []errors.Positioned
}

// unitRecorder collects skipped units and counts attempted ones so that a
// file in which every unit failed can be reported as a whole.
type unitRecorder struct {
	path        string
	attempted   int
	failedUnits int
	failed      []errors.Positioned
}

func (u *unitRecorder) attempt() {
	u.attempted++
}

// fail records a top-level unit (type or impl block) that was skipped.
func (u *unitRecorder) fail(err errors.Positioned) {
	u.failedUnits++
	u.skip(err)
}

// skip records a nested unit (a single function) that was skipped without
// failing its enclosing unit.
func (u *unitRecorder) skip(err errors.Positioned) {
	log.Warningf("%s: skipping unit: %s", u.path, err.Error())
	u.failed = append(u.failed, err)
}

// allFailed reports whether units were attempted and none survived.
func (u *unitRecorder) allFailed() bool {
	return u.attempted > 0 && u.failedUnits >= u.attempted
}

func (u *unitRecorder) causes() []error {
	causes := make([]error, len(u.failed))
	for i, err := range u.failed {
		causes[i] = err
	}
	return causes
}

func (u *unitRecorder) wholeFileError(message string, extra ...error) *errors.StructuralParseError {
	return &errors.StructuralParseError{
		Position: ir.Position{Filename: u.path, Line: 1, Column: 1},
		Message:  message,
		Causes:   append(u.causes(), extra...),
	}
}

func position(path, source string, offset int) ir.Position {
	line := 1
	lineStart := 0
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return ir.Position{Filename: path, Offset: offset, Line: line, Column: offset - lineStart + 1}
}
