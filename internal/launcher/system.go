package launcher

import "github.com/sempr/run-constrained/internal/profile"

// System is the slice of the kernel interface the worker drives. Host()
// returns the real one; tests substitute a recorder.
type System interface {
	Geteuid() int
	Getegid() int
	Setreuid(ruid, euid int) error
	Setregid(rgid, egid int) error
	Chdir(dir string) error
	// GetLimit returns the hard limit currently installed for res.
	GetLimit(res profile.Resource) (uint64, error)
	SetLimit(res profile.Resource, soft, hard uint64) error
	Setenv(key, value string) error
	// Exec replaces the process image. It returns only on failure.
	Exec(path string, argv []string, env []string) error
}
