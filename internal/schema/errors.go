package schema

import "errors"

// Error taxonomy for expected pipeline failures. Concrete rule errors in the
// validator and transformer wrap one of these sentinels so callers can class
// a failure with errors.Is without matching message text.
var (
	// ErrSchema marks structural problems: missing columns, unrecognized
	// table kinds.
	ErrSchema = errors.New("schema error")

	// ErrIntegrity marks key problems: duplicate primary keys, foreign keys
	// with no referent.
	ErrIntegrity = errors.New("integrity error")

	// ErrDomain marks value-level problems: enum, datetime, numeric, and
	// null-in-critical-column violations.
	ErrDomain = errors.New("domain error")

	// ErrDependency marks a missing companion table, e.g. transforming order
	// items without products.
	ErrDependency = errors.New("dependency error")
)
