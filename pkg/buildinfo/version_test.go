package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v9.9.9"

	i := Get()
	if i.Version != "v9.9.9" || i.Commit != Commit {
		t.Errorf("Get() = %+v", i)
	}
	if !strings.HasPrefix(i.String(), "v9.9.9 (commit ") {
		t.Errorf("String() = %q", i.String())
	}
	if !strings.Contains(Template(), "v9.9.9") {
		t.Errorf("Template() = %q", Template())
	}
}
