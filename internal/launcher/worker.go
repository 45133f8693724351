package launcher

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sempr/run-constrained/internal/profile"
)

// Worker turns one invocation into one constrained process image.
type Worker struct {
	sys     System
	profile profile.Profile
	logger  *slog.Logger
}

func NewWorker(sys System, prof profile.Profile, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sys: sys, profile: prof, logger: logger.With("P", "worker")}
}

// BuildArgv returns the exec vector: interpreter, script file name, then the
// pass-through arguments unchanged. The terminating NULL is added by exec.
func BuildArgv(interpreter, file string, passthrough []string) []string {
	argv := make([]string, 0, 2+len(passthrough))
	argv = append(argv, interpreter, file)
	return append(argv, passthrough...)
}

// Run executes the preparation pipeline for argv, which is the full
// launcher invocation (argv[0] is the launcher, argv[1] the script path).
// On success the process becomes the interpreter and Run never returns;
// every return carries the error that stopped it.
//
// The caller must hold runtime.LockOSThread so identity changes and exec
// happen on the same thread.
func (w *Worker) Run(argv []string) error {
	if len(argv) < 2 {
		return stepError(ErrUsage, "arguments", errors.New("need script to run"))
	}

	loc, err := ParseLocation(argv[1])
	if err != nil {
		return err
	}

	if err := w.normalizeIdentity(); err != nil {
		return err
	}

	if err := w.sys.Chdir(loc.Dir); err != nil {
		return stepError(ErrFilesystem, "chdir", fmt.Errorf("%q: %w", loc.Dir, err))
	}

	execArgv := BuildArgv(w.profile.Interpreter(), loc.File, argv[2:])

	if err := tightenLimits(w.sys, w.profile.Limits()); err != nil {
		return err
	}

	if err := w.pinEnvironment(); err != nil {
		return err
	}

	return w.replaceImage(execArgv)
}

// normalizeIdentity collapses real ids onto the effective ones inherited
// from the setuid/setgid bits, user first, then group.
func (w *Worker) normalizeIdentity() error {
	uid := w.sys.Geteuid()
	gid := w.sys.Getegid()
	if err := w.sys.Setreuid(uid, uid); err != nil {
		return stepError(ErrPrivilege, "setreuid", fmt.Errorf("uid %d: %w", uid, err))
	}
	if err := w.sys.Setregid(gid, gid); err != nil {
		return stepError(ErrPrivilege, "setregid", fmt.Errorf("gid %d: %w", gid, err))
	}
	return nil
}

func (w *Worker) pinEnvironment() error {
	for _, e := range w.profile.Pinned() {
		if err := w.sys.Setenv(e.Name, e.Value); err != nil {
			return stepError(ErrEnvironment, "setenv", fmt.Errorf("$%s: %w", e.Name, err))
		}
	}
	return nil
}

// replaceImage only comes back if exec failed.
func (w *Worker) replaceImage(argv []string) error {
	path := w.profile.Interpreter()
	env := w.profile.Environ()
	err := w.sys.Exec(path, argv, env)

	w.logger.Error("exec failed, called with", "filename", path)
	for i, a := range argv {
		w.logger.Error("exec argument", "index", i, "argv", a)
	}
	for i, e := range env {
		w.logger.Error("exec environment", "index", i, "envp", e)
	}
	return stepError(ErrExec, "execve", fmt.Errorf("%s: %w", path, err))
}
