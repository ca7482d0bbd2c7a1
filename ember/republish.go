package ember

import (
	"strconv"
	"strings"

	"github.com/emberplus/emberplus/oid"
)

// RepublishKey names the key a Wörterbuch-style key/value republish bridge
// would publish a parameter's value under: "ember" followed by its OID
// arcs, slash-separated. This module never opens such a bridge itself --
// it is named as an external collaborator the library hands values to, not
// a dependency this module takes on -- but the key format is worth getting
// right once, for embedders (and cmd/emberconsumer's -republish-log flag)
// that do wire one up.
func RepublishKey(o oid.OID) string {
	if o.IsRoot() {
		return "ember"
	}

	parts := make([]string, len(o))
	for i, arc := range o {
		parts[i] = strconv.FormatUint(uint64(arc), 10)
	}

	return "ember/" + strings.Join(parts, "/")
}
