package txn

import "path/filepath"

// Paths locates the four databases plus the lock file. The lock file
// is a pure mutual-exclusion token and must never be one of the
// database files.
type Paths struct {
	Passwd  string
	Shadow  string
	Group   string
	GShadow string
	Lock    string
}

// DefaultPaths returns the standard /etc locations. The lock path
// follows the shadow-suite convention of a hidden file next to the
// databases.
func DefaultPaths() Paths {
	return PathsInDir("/etc")
}

// PathsInDir places all five files in one directory, which keeps the
// commit renames on a single filesystem.
func PathsInDir(dir string) Paths {
	return Paths{
		Passwd:  filepath.Join(dir, "passwd"),
		Shadow:  filepath.Join(dir, "shadow"),
		Group:   filepath.Join(dir, "group"),
		GShadow: filepath.Join(dir, "gshadow"),
		Lock:    filepath.Join(dir, ".idstore.lock"),
	}
}
