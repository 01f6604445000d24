package game

const (
	ErrorNegativeTunable   = "settings: %s must not be negative (got %v)"
	ErrorInvertedHeights   = "settings: crouch height %v must be below normal height %v"
	ErrorZeroGravity       = "settings: gravity must not be the zero vector"
	ErrorUnknownFormat     = "settings: unknown file format %q"
	ErrorArchiveMissing    = "archive: missing field %q"
	ErrorArchiveType       = "archive: field %q has type %T, expected %s"
	ErrorSnapshotTruncated = "snapshot: message truncated reading %d bits at bit %d"
	ErrorLevelBrush        = "level: brush %q has no extent"
)
