//go:build !linux

package launcher

import (
	"errors"
	"os"

	"github.com/sempr/run-constrained/internal/profile"
)

// Only Linux is supported. Elsewhere every privileged step fails, so the
// worker never execs without its limits.
type hostSystem struct{}

func Host() System {
	return hostSystem{}
}

func (hostSystem) Geteuid() int { return os.Geteuid() }
func (hostSystem) Getegid() int { return os.Getegid() }

func (hostSystem) Setreuid(int, int) error { return errors.ErrUnsupported }
func (hostSystem) Setregid(int, int) error { return errors.ErrUnsupported }

func (hostSystem) Chdir(dir string) error { return os.Chdir(dir) }

func (hostSystem) GetLimit(profile.Resource) (uint64, error) { return 0, errors.ErrUnsupported }
func (hostSystem) SetLimit(profile.Resource, uint64, uint64) error {
	return errors.ErrUnsupported
}

func (hostSystem) Setenv(key, value string) error { return os.Setenv(key, value) }

func (hostSystem) Exec(string, []string, []string) error { return errors.ErrUnsupported }
