package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"

	"golang.org/x/sys/unix"
)

// Outcome is why the supervisor stopped.
type Outcome int

const (
	// WorkerExited: the worker (or the interpreter it became) is gone.
	WorkerExited Outcome = iota
	// Terminated: an external SIGTERM or a cancelled context.
	Terminated
)

func (o Outcome) String() string {
	switch o {
	case WorkerExited:
		return "worker exited"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Supervisor keeps the launcher process alive for exactly as long as the
// worker, so the caller can stop the invocation by killing it. It does no
// I/O of its own; the worker inherits stdio.
type Supervisor struct {
	worker  *exec.Cmd
	signals chan os.Signal
	done    chan error
}

func NewSupervisor(worker *exec.Cmd) *Supervisor {
	return &Supervisor{
		worker:  worker,
		signals: make(chan os.Signal, 2),
		done:    make(chan error, 1),
	}
}

const (
	// supervisorEnv carries the supervisor's pid into the worker.
	supervisorEnv = "RUN_CONSTRAINED_SUPERVISOR"
	// supervisorFD is the read end of a pipe only the supervisor hands out.
	supervisorFD = 3
)

// WorkerCommand builds the re-exec of the running binary into its worker
// subcommand, passing the full invocation vector through. The worker gets a
// minimal environment and the supervisor pipe on fd 3; see Supervised.
func WorkerCommand(subcommand string, invocation []string) (*exec.Cmd, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate launcher binary: %w", err)
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create supervisor pipe: %w", err)
	}
	w.Close()

	args := append([]string{subcommand}, invocation...)
	cmd := exec.Command(self, args...)
	cmd.Env = workerEnv()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{r}
	return cmd, nil
}

// workerEnv is the environment the worker's own runtime starts with. The
// interpreter never sees it; it gets the profile environment instead.
func workerEnv() []string {
	env := []string{supervisorEnv + "=" + strconv.Itoa(os.Getpid())}
	if id, ok := os.LookupEnv("INVOCATION_ID"); ok {
		env = append(env, "INVOCATION_ID="+id)
	}
	return env
}

// Supervised reports whether the running worker was started by a supervisor
// through WorkerCommand, and closes the supervisor pipe so the interpreter
// does not inherit it.
func Supervised() error {
	if err := checkSupervised(os.Getenv(supervisorEnv), os.Getppid(), supervisorFD); err != nil {
		return stepError(ErrUsage, "supervisor", err)
	}
	return unix.Close(supervisorFD)
}

func checkSupervised(marker string, ppid, fd int) error {
	if marker != strconv.Itoa(ppid) {
		return fmt.Errorf("%s is %q, want parent pid %d", supervisorEnv, marker, ppid)
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return fmt.Errorf("supervisor pipe on fd %d: %w", fd, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFIFO {
		return fmt.Errorf("fd %d is not the supervisor pipe", fd)
	}
	return nil
}

// Start arms SIGTERM and SIGCHLD handling, then starts the worker. The
// handlers go in first so a worker that dies immediately is not missed.
func (s *Supervisor) Start() error {
	signal.Notify(s.signals, unix.SIGTERM, unix.SIGCHLD)
	err := s.worker.Start()
	// the worker holds its own copies now
	for _, f := range s.worker.ExtraFiles {
		f.Close()
	}
	if err != nil {
		signal.Stop(s.signals)
		return fmt.Errorf("start worker: %w", err)
	}
	go func() {
		s.done <- s.worker.Wait()
	}()
	return nil
}

// Wait blocks until the worker is gone or termination is requested. The
// worker is not killed on termination.
func (s *Supervisor) Wait(ctx context.Context) Outcome {
	defer signal.Stop(s.signals)
	for {
		select {
		case sig := <-s.signals:
			switch sig {
			case unix.SIGTERM:
				return Terminated
			case unix.SIGCHLD:
				return WorkerExited
			}
		case <-s.done:
			return WorkerExited
		case <-ctx.Done():
			return Terminated
		}
	}
}

// Run is Start followed by Wait.
func (s *Supervisor) Run(ctx context.Context) (Outcome, error) {
	if s.worker == nil {
		return Terminated, errors.New("no worker to supervise")
	}
	if err := s.Start(); err != nil {
		return Terminated, err
	}
	return s.Wait(ctx), nil
}
