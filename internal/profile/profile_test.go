package profile

import (
	"slices"
	"strings"
	"testing"

	"github.com/sempr/run-constrained/pkg/constants"
)

func TestDefault(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got := p.Interpreter(); got != "/usr/local/bin/py.test" {
		t.Errorf("interpreter = %q", got)
	}

	wantEnv := []string{
		"PYTHONPATH=/home/run_stud/code/python-libs",
		"DISPLAY=:2.0",
		"HOME=/home/run_stud",
		"USER=run_stud",
		"PATH=/usr/local/bin:/bin:/usr/bin:/usr/local/X11/bin:/usr/X11/bin",
		"LANG=C",
		"TERM=ansi",
		"SHELL=/bin/sh",
		"LANGUAGE=uk",
	}
	if got := p.Environ(); !slices.Equal(got, wantEnv) {
		t.Errorf("environ = %q, want %q", got, wantEnv)
	}

	var pinned []string
	for _, e := range p.Pinned() {
		pinned = append(pinned, e.Name)
	}
	if !slices.Equal(pinned, []string{"DISPLAY", "HOME"}) {
		t.Errorf("pinned = %v", pinned)
	}

	wantLimits := []Ceiling{
		{Resource: AddressSpace, Max: 500 * constants.MiB},
		{Resource: CPUTime, Max: 90},
		{Resource: FileSize, Max: 1 * constants.MiB},
		{Resource: ResidentSet, Max: 500 * constants.MiB},
	}
	if got := p.Limits(); !slices.Equal(got, wantLimits) {
		t.Errorf("limits = %v, want %v", got, wantLimits)
	}
}

func TestDefaultInterpreterOverride(t *testing.T) {
	old := Interpreter
	t.Cleanup(func() { Interpreter = old })

	Interpreter = "/usr/bin/py.test-3"
	p, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if p.Interpreter() != "/usr/bin/py.test-3" {
		t.Errorf("interpreter = %q", p.Interpreter())
	}

	Interpreter = "py.test"
	if _, err := Default(); err == nil {
		t.Error("relative override accepted")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "missing interpreter",
			doc:     "",
			wantErr: "interpreter is required",
		},
		{
			name:    "relative interpreter",
			doc:     `interpreter = "bin/python"`,
			wantErr: "not absolute",
		},
		{
			name:    "unknown key",
			doc:     "interpreter = \"/bin/true\"\nshell = true\n",
			wantErr: "decode profile",
		},
		{
			name:    "bad env name",
			doc:     "interpreter = \"/bin/true\"\n[[env]]\nname = \"A=B\"\nvalue = \"x\"\n",
			wantErr: "invalid environment name",
		},
		{
			name:    "duplicate env",
			doc:     "interpreter = \"/bin/true\"\n[[env]]\nname = \"A\"\nvalue = \"1\"\n[[env]]\nname = \"A\"\nvalue = \"2\"\n",
			wantErr: "duplicate environment variable A",
		},
		{
			name:    "unknown resource",
			doc:     "interpreter = \"/bin/true\"\n[[limit]]\nresource = \"stack\"\nmax = 10\n",
			wantErr: "unknown resource",
		},
		{
			name:    "duplicate limit",
			doc:     "interpreter = \"/bin/true\"\n[[limit]]\nresource = \"cpu-time\"\nmax = 10\n[[limit]]\nresource = \"cpu-time\"\nmax = 20\n",
			wantErr: "duplicate limit for cpu-time",
		},
		{
			name:    "zero limit",
			doc:     "interpreter = \"/bin/true\"\n[[limit]]\nresource = \"file-size\"\nmax = 0\n",
			wantErr: "must be positive",
		},
		{
			name:    "no limits",
			doc:     `interpreter = "/bin/true"`,
			wantErr: "missing limit for address-space",
		},
		{
			name: "resident set left out",
			doc: "interpreter = \"/bin/true\"\n" +
				"[[limit]]\nresource = \"address-space\"\nmax = 10\n" +
				"[[limit]]\nresource = \"cpu-time\"\nmax = 10\n" +
				"[[limit]]\nresource = \"file-size\"\nmax = 10\n",
			wantErr: "missing limit for resident-set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatalf("Parse accepted %q", tt.doc)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	limits := p.Limits()
	limits[0].Max = 1
	env := p.Environ()
	env[0] = "SECRET=xyz"

	if p.Limits()[0].Max == 1 {
		t.Error("Limits exposes internal slice")
	}
	if p.Environ()[0] == "SECRET=xyz" {
		t.Error("Environ exposes internal slice")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()): %v\n%s", err, data)
	}
	if back.Interpreter() != p.Interpreter() ||
		!slices.Equal(back.Environ(), p.Environ()) ||
		!slices.Equal(back.Limits(), p.Limits()) {
		t.Errorf("round trip changed the profile:\n%s", data)
	}
}
