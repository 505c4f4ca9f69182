package version

import "testing"

func TestCreator(t *testing.T) {
	saved := Version
	defer func() { Version = saved }()

	Version = "1.2.3"
	if got := Creator(); got != "XPOLBEAMLINE V1.2.3" {
		t.Errorf("Creator() = %q", got)
	}
}
