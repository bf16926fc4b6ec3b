package domain

import "strings"

// OwnsRef reports whether a storage ref lives inside the owner's namespace.
// Namespacing is a plain path-prefix rule: refs are stored as
// "<owner_id>/<object>". This guards which files may be processed; read-side
// access to a job is a separate check against Job.OwnerID.
func OwnsRef(ownerID, ref string) bool {
	ownerID = strings.TrimSpace(ownerID)
	ref = strings.TrimSpace(ref)
	if ownerID == "" || ref == "" {
		return false
	}
	return strings.HasPrefix(ref, ownerID+"/") && len(ref) > len(ownerID)+1
}
