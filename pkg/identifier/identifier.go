package identifier

import (
	"fmt"
	"math/rand"
	"time"
)

// Generators produce human-readable identifiers of the form
// <PREFIX>-<millisecond timestamp>-<zero-padded random suffix>.
// The scheme is not collision-proof under concurrent generation within the
// same millisecond; uniqueness is enforced by the database unique constraint
// and a collision surfaces as a conflict error.

// Request returns a new service request number.
func Request() string {
	return generate("REQ", 1000, 3)
}

// Transaction returns a new payment transaction ID.
func Transaction() string {
	return generate("TXN", 10000, 4)
}

// Receipt returns a new payment receipt number.
func Receipt() string {
	return generate("RCP", 1000, 3)
}

func generate(prefix string, bound, width int) string {
	return fmt.Sprintf("%s-%d-%0*d", prefix, time.Now().UnixMilli(), width, rand.Intn(bound))
}
