// Package graph defines the canonical entities of a document's logical
// structure: targets (devices, strips, cables), pins, links and connections.
//
// Every entity carries a deterministic GUID derived from its identity key,
// so re-deriving the same entity in another session (or another run over the
// same document) produces the same identifier. Instance uniqueness within a
// session is enforced by the owning registries, not here.
package graph

import (
	"strings"

	"github.com/google/uuid"
)

// Per-entity-type GUID namespaces. Keeping the namespaces distinct means a
// target and a connection can never collide even if their canonical identity
// strings were equal.
var (
	nsTarget     = uuid.NewSHA1(uuid.NameSpaceOID, []byte("indugraph.target"))
	nsPin        = uuid.NewSHA1(uuid.NameSpaceOID, []byte("indugraph.pin"))
	nsLink       = uuid.NewSHA1(uuid.NameSpaceOID, []byte("indugraph.link"))
	nsConnection = uuid.NewSHA1(uuid.NameSpaceOID, []byte("indugraph.connection"))
)

// deriveGUID hashes the canonical identity parts into a stable GUID.
// Parts are joined with "|", mirroring the canonical-string form used for
// tags.
func deriveGUID(ns uuid.UUID, parts ...string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte(strings.Join(parts, "|")))
}

// orderPair returns the two GUID strings in ascending order. Unordered-pair
// identities (links, connections) canonicalize through this before any key
// computation, so argument order never matters.
func orderPair(a, b uuid.UUID) (string, string) {
	as, bs := a.String(), b.String()
	if bs < as {
		return bs, as
	}
	return as, bs
}
