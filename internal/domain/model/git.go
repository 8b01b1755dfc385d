package model

import (
	"regexp"
	"strings"
	"time"
)

var vagueMessage = regexp.MustCompile(`^(update|fix|wip|tmp|test|\.)`)

// Commit is the subset of commit metadata the analyzers use.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	When    time.Time `json:"date"`
}

// MessageLength is the length of the subject line in characters.
func (c Commit) MessageLength() int {
	return len([]rune(c.Message))
}

// IsMeaningful reports whether the subject avoids vague prefixes such as
// "update" or "wip".
func (c Commit) IsMeaningful() bool {
	return !vagueMessage.MatchString(strings.ToLower(c.Message))
}

// GitInfo is the cached repository summary. A nil *GitInfo means the
// project is not a git repository.
type GitInfo struct {
	Commits     []Commit `json:"commits"`
	CommitCount int      `json:"commit_count"`
}
