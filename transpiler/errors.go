package transpiler

import "errors"

// Compilation failures are sentinel errors so callers can branch with
// errors.Is. A stage either fully succeeds or the whole compile call
// fails; no partial circuit is ever returned alongside one of these.
var (
	ErrorInsufficientPhysicalQubits = errors.New("logical qubit count exceeds physical qubit count")
	ErrorUnroutablePair             = errors.New("operands lie in disconnected coupling components")
	ErrorNoDecompositionRule        = errors.New("no decomposition rule reaches the target basis")
	ErrorCompilationCancelled       = errors.New("compilation cancelled")
)
