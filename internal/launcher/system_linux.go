//go:build linux

package launcher

import (
	"fmt"
	"os"

	"github.com/sempr/run-constrained/internal/profile"
	"golang.org/x/sys/unix"
)

type hostSystem struct{}

// Host returns the System backed by the running process.
func Host() System {
	return hostSystem{}
}

func rlimitResource(res profile.Resource) (int, error) {
	switch res {
	case profile.AddressSpace:
		return unix.RLIMIT_AS, nil
	case profile.CPUTime:
		return unix.RLIMIT_CPU, nil
	case profile.FileSize:
		return unix.RLIMIT_FSIZE, nil
	case profile.ResidentSet:
		return unix.RLIMIT_RSS, nil
	}
	return 0, fmt.Errorf("no rlimit for resource %q", res)
}

func (hostSystem) Geteuid() int { return unix.Geteuid() }
func (hostSystem) Getegid() int { return unix.Getegid() }

func (hostSystem) Setreuid(ruid, euid int) error { return unix.Setreuid(ruid, euid) }
func (hostSystem) Setregid(rgid, egid int) error { return unix.Setregid(rgid, egid) }

func (hostSystem) Chdir(dir string) error { return unix.Chdir(dir) }

func (hostSystem) GetLimit(res profile.Resource) (uint64, error) {
	r, err := rlimitResource(res)
	if err != nil {
		return 0, err
	}
	var rlim unix.Rlimit
	if err := unix.Getrlimit(r, &rlim); err != nil {
		return 0, err
	}
	return rlim.Max, nil
}

func (hostSystem) SetLimit(res profile.Resource, soft, hard uint64) error {
	r, err := rlimitResource(res)
	if err != nil {
		return err
	}
	return unix.Setrlimit(r, &unix.Rlimit{Cur: soft, Max: hard})
}

func (hostSystem) Setenv(key, value string) error { return os.Setenv(key, value) }

func (hostSystem) Exec(path string, argv []string, env []string) error {
	return unix.Exec(path, argv, env)
}
