package errors

// SQLSTATE classes and codes the classifier cares about.
// Based on https://www.postgresql.org/docs/current/errcodes-appendix.html

// Class 08 - Connection Exception
const (
	ClassConnectionException = "08"

	ConnectionDoesNotExist = "08003"
	ConnectionFailure      = "08006"
)

// Class 42 - Syntax Error or Access Rule Violation
const (
	SyntaxError = "42601"
)

// Class 57 - Operator Intervention
const (
	AdminShutdown = "57P01"
)

// ConnectionLost reports whether a SQLSTATE code means the session can no
// longer be used.
func ConnectionLost(code string) bool {
	if len(code) < 2 {
		return false
	}
	return code[:2] == ClassConnectionException || code == AdminShutdown
}
