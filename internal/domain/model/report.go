package model

// DuplicateGroup is a set of drive items sharing one name. Keep is the oldest.
type DuplicateGroup struct {
	Name   string
	Keep   DriveItem
	Remove []DriveItem
}

// ScanReport summarises a duplicate scan.
type ScanReport struct {
	Scanned   int
	Groups    int
	Removable int
	Sample    []DuplicateGroup
}

// RemovalReport summarises a bulk removal.
type RemovalReport struct {
	Total      int
	Succeeded  int
	Failed     int
	FirstError string
	// PermissionHint is set when the first failure was a permission problem.
	PermissionHint bool
}

// BroadcastReport counts per-recipient outcomes.
type BroadcastReport struct {
	Recipients int
	Attempts   int
	Succeeded  int
	Failed     int
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	Users       int
	ActiveUsers int
	Chats       ChatStats
	DriveFiles  int
	// DriveCounted is false when Drive could not be reached.
	DriveCounted  bool
	IndexedFiles  int
	TotalSearches int64
}
