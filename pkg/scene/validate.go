package scene

import "fmt"

// ValidationSeverity indicates whether a finding blocks tessellation or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Entry    string             // entry name, empty for scene-level findings
	Line     int                // source line, 0 if unknown
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] mesh %q: %s", e.Severity, e.Entry, e.Message)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural checks on s. It never mutates the scene.
func Validate(s *Scene) ValidationResult {
	var all []ValidationError
	all = append(all, validateNames(s)...)
	all = append(all, validateGenerators(s)...)
	all = append(all, validateKinds(s)...)

	var result ValidationResult
	for _, f := range all {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

// validateNames requires every entry to have a unique, non-empty name.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int)
	for _, e := range s.Entries {
		if e.Name == "" {
			errs = append(errs, ValidationError{
				Line:     e.Line,
				Message:  fmt.Sprintf("%s entry has no name", e.Kind),
				Severity: SeverityError,
			})
			continue
		}
		if first, dup := seen[e.Name]; dup {
			msg := "name already defined"
			if first > 0 {
				msg = fmt.Sprintf("name already defined on line %d", first)
			}
			errs = append(errs, ValidationError{
				Entry:    e.Name,
				Line:     e.Line,
				Message:  msg,
				Severity: SeverityError,
			})
			continue
		}
		seen[e.Name] = e.Line
	}
	return errs
}

func validateGenerators(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, e := range s.Entries {
		if e.Generator == nil {
			errs = append(errs, ValidationError{
				Entry:    e.Name,
				Line:     e.Line,
				Message:  "no generator",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateKinds flags entries whose generator is not implemented yet.
func validateKinds(s *Scene) []ValidationError {
	var warns []ValidationError
	for _, e := range s.Entries {
		switch e.Kind {
		case KindSphere, KindTorus:
			warns = append(warns, ValidationError{
				Entry:    e.Name,
				Line:     e.Line,
				Message:  fmt.Sprintf("%s tessellation is not implemented; the mesh will be skipped", e.Kind),
				Severity: SeverityWarning,
			})
		}
	}
	return warns
}
