package version

import "testing"

func TestString(t *testing.T) {
	saved := [3]string{Version, GitSHA, BuildTime}
	defer func() { Version, GitSHA, BuildTime = saved[0], saved[1], saved[2] }()

	Version, GitSHA, BuildTime = "1.2.0", "abc123", "2026-01-02"
	if got, want := String(), "motionfeat 1.2.0 (abc123, built 2026-01-02)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
