package testprojects

import (
	"fmt"
	"strings"
	"time"
)

// Profile selects the shape of a generated project.
type Profile string

// Supported profiles.
const (
	// ProfileGood satisfies every analyzer and grades A.
	ProfileGood Profile = "good"
	// ProfileWeak is an undocumented single-commit project that fails.
	ProfileWeak Profile = "weak"
	// ProfileLeaky is the good project plus a hardcoded cloud key.
	ProfileLeaky Profile = "leaky"
)

// Profiles lists every supported profile.
func Profiles() []Profile {
	return []Profile{ProfileGood, ProfileWeak, ProfileLeaky}
}

// ParseProfile maps a name to a Profile.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Profiles() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProfile, s)
}

// Config holds generation settings.
type Config struct {
	Dir     string  // Parent directory; the project is created inside it
	Name    string  // Project directory name (default: project-<random>)
	Profile Profile // Project shape
	Git     bool    // Record the files as a commit history
	Author  string  // Commit author name
	Email   string  // Commit author email
	Start   time.Time
}

// Project describes a generated project.
type Project struct {
	Path    string
	Profile Profile
	Files   []string
	Commits int
}
