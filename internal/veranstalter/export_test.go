package veranstalter

// Projection exposes the organizer projection to external tests.
var Projection = projection

// CheckVersion exposes checkVersion to external tests.
var CheckVersion = checkVersion

// UpdateSQL renders the UPDATE statement Update issues for p.
func UpdateSQL(p Patch, id int) (string, []any) {
	a := patchAssignments(p)
	a.raw("version = version + 1")
	return a.update("veranstalter", "id", id, "RETURNING version")
}

// StorageKey exposes the blob key layout to external tests.
var StorageKey = buildStorageKey

// SanitizeFilename exposes sanitizeFilename to external tests.
var SanitizeFilename = sanitizeFilename
