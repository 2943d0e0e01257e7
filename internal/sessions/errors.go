package sessions

import "errors"

// ErrNotFound covers sessions that never existed, have expired, or whose
// metadata cannot be read. Callers see a single "not found" condition.
var ErrNotFound = errors.New("session not found")
