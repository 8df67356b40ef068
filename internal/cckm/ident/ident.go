// Package ident classifies resource identifier strings. Both predicates
// are pure and total: an unrecognized string simply returns false from
// both, and no input matches both at once.
package ident

import "regexp"

var (
	uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// OCIDs follow ocid1.<resource-type>.<realm>[.region].<unique-id>,
	// e.g. ocid1.key.oc1.iad.amaaaaaaexampleuniqueid.
	ocidPattern = regexp.MustCompile(`^ocid1\.[a-z]+\.oc1(\.[a-z0-9]+)?\..*`)
)

// IsUUID reports whether s is a canonical 8-4-4-4-12 hyphenated hex UUID,
// case-insensitive.
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// IsOCID reports whether s is an OCI OCID.
func IsOCID(s string) bool {
	return ocidPattern.MatchString(s)
}
