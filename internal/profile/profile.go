// Package profile holds the fixed launch profile: the interpreter to exec,
// the sanitized environment it sees and the resource ceilings it runs under.
//
// The profile is compiled into the binary. The launcher is installed setuid,
// so nothing the caller controls at run time may change it.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed default.toml
var defaultTOML []byte

// Interpreter overrides the interpreter path of the compiled-in profile.
// Set it at build time:
//
//	go build -ldflags "-X github.com/sempr/run-constrained/internal/profile.Interpreter=/usr/bin/py.test-3"
var Interpreter string

// Resource names a kind of resource ceiling.
type Resource string

const (
	AddressSpace Resource = "address-space"
	CPUTime      Resource = "cpu-time"
	FileSize     Resource = "file-size"
	ResidentSet  Resource = "resident-set"
)

// resources lists every supported ceiling. A profile must set each one.
var resources = []Resource{AddressSpace, CPUTime, FileSize, ResidentSet}

// Known reports whether r is one of the supported ceilings.
func (r Resource) Known() bool {
	return slices.Contains(resources, r)
}

// EnvVar is one entry of the sanitized environment.
type EnvVar struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
	// Pin marks variables that are also set on the launcher itself
	// before exec, in addition to being passed in the exec environment.
	Pin bool `toml:"pin,omitempty"`
}

func (e EnvVar) String() string {
	return e.Name + "=" + e.Value
}

// Ceiling is the hard maximum for one resource. CPU time is in seconds,
// everything else in bytes.
type Ceiling struct {
	Resource Resource `toml:"resource"`
	Max      uint64   `toml:"max"`
}

type document struct {
	Interpreter string    `toml:"interpreter"`
	Env         []EnvVar  `toml:"env"`
	Limits      []Ceiling `toml:"limit"`
}

// Profile is immutable once built. Accessors hand out copies.
type Profile struct {
	interpreter string
	env         []EnvVar
	limits      []Ceiling
}

// Default returns the compiled-in profile with the build-time interpreter
// override applied.
func Default() (Profile, error) {
	p, err := Parse(defaultTOML)
	if err != nil {
		return Profile{}, fmt.Errorf("built-in profile: %w", err)
	}
	if Interpreter != "" {
		if !filepath.IsAbs(Interpreter) {
			return Profile{}, fmt.Errorf("built-in profile: interpreter override %q is not absolute", Interpreter)
		}
		p.interpreter = Interpreter
	}
	return p, nil
}

// Parse decodes and validates a TOML profile. Unknown keys are rejected.
func Parse(data []byte) (Profile, error) {
	var doc document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if err := doc.validate(); err != nil {
		return Profile{}, err
	}
	return Profile{
		interpreter: doc.Interpreter,
		env:         append([]EnvVar(nil), doc.Env...),
		limits:      append([]Ceiling(nil), doc.Limits...),
	}, nil
}

func (d *document) validate() error {
	if d.Interpreter == "" {
		return errors.New("interpreter is required")
	}
	if !filepath.IsAbs(d.Interpreter) {
		return fmt.Errorf("interpreter %q is not absolute", d.Interpreter)
	}

	seen := make(map[string]bool, len(d.Env))
	for _, e := range d.Env {
		if e.Name == "" || strings.ContainsAny(e.Name, "=\x00") {
			return fmt.Errorf("invalid environment name %q", e.Name)
		}
		if strings.ContainsRune(e.Value, 0) {
			return fmt.Errorf("environment value of %s contains NUL", e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate environment variable %s", e.Name)
		}
		seen[e.Name] = true
	}

	limits := make(map[Resource]bool, len(d.Limits))
	for _, l := range d.Limits {
		if !l.Resource.Known() {
			return fmt.Errorf("unknown resource %q", l.Resource)
		}
		if limits[l.Resource] {
			return fmt.Errorf("duplicate limit for %s", l.Resource)
		}
		if l.Max == 0 {
			return fmt.Errorf("limit for %s must be positive", l.Resource)
		}
		limits[l.Resource] = true
	}
	for _, r := range resources {
		if !limits[r] {
			return fmt.Errorf("missing limit for %s", r)
		}
	}
	return nil
}

// Interpreter is the absolute path of the program exec'd in place of the worker.
func (p Profile) Interpreter() string {
	return p.interpreter
}

// Environ returns the exec environment as NAME=value strings, in profile order.
func (p Profile) Environ() []string {
	env := make([]string, 0, len(p.env))
	for _, e := range p.env {
		env = append(env, e.String())
	}
	return env
}

// Pinned returns the variables to set on the launcher before exec.
func (p Profile) Pinned() []EnvVar {
	var pinned []EnvVar
	for _, e := range p.env {
		if e.Pin {
			pinned = append(pinned, e)
		}
	}
	return pinned
}

// Limits returns the ceilings in the order they are applied.
func (p Profile) Limits() []Ceiling {
	return append([]Ceiling(nil), p.limits...)
}

// Marshal renders the profile as TOML.
func (p Profile) Marshal() ([]byte, error) {
	return toml.Marshal(document{
		Interpreter: p.interpreter,
		Env:         p.env,
		Limits:      p.limits,
	})
}
