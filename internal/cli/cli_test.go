package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chrisjrex/voxcli/config"
	"github.com/chrisjrex/voxcli/internal/app"
	"github.com/chrisjrex/voxcli/internal/output"
)

func testDeps(t *testing.T) *Dependencies {
	t.Helper()
	cfg := &config.Config{
		DataDir:  t.TempDir(),
		STTModel: "whisper/base",
		Voice:    "system/default",
	}
	return &Dependencies{
		App: app.New(cfg, nil),
		Out: output.New(&bytes.Buffer{}),
	}
}

func TestHelperCommandsAreHidden(t *testing.T) {
	root := NewRootCmd(testDeps(t))
	for _, c := range root.Commands() {
		hidden := strings.HasPrefix(c.Name(), "__")
		if c.Hidden != hidden {
			t.Errorf("command %q: Hidden = %v", c.Name(), c.Hidden)
		}
	}
}

func TestUserFacingCommandsPresent(t *testing.T) {
	root := NewRootCmd(testDeps(t))
	want := []string{"start", "stop", "status", "speak", "silence", "server", "engines", "doctor"}
	have := map[string]bool{}
	for _, c := range root.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestEnginesListsCatalog(t *testing.T) {
	root := NewRootCmd(testDeps(t))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"engines"})
	if err := root.Execute(); err != nil {
		t.Fatalf("engines: %v", err)
	}
	got := out.String()
	for _, want := range []string{"whisper/base", "kokoro/af_heart", "system/default"} {
		if !strings.Contains(got, want) {
			t.Errorf("engines output missing %q:\n%s", want, got)
		}
	}
}
