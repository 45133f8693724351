package constants

// ExitFailure is the worker's status when any preparation step failed.
// The supervisor itself always exits 0.
const ExitFailure = 1

// MiB is one mebibyte, used for the size based ceilings.
const MiB = 1048576

// WorkerCommand is the hidden subcommand the supervisor re-executes itself with.
const WorkerCommand = "worker"
