package common

import (
	"net/url"
	"strings"
)

const MsgInvalidRepoURL = "Please enter a valid GitHub repository URL"

// IsGitHubURL reports whether s points at github.com.
func IsGitHubURL(s string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(s)), "github.com")
}

// ValidateRepoURL returns a ValidationError for anything but a GitHub URL.
func ValidateRepoURL(s string) error {
	if strings.TrimSpace(s) == "" || !IsGitHubURL(s) {
		return NewValidationError(MsgInvalidRepoURL)
	}
	return nil
}

// RepoName is the last path segment of a repository URL, without a ".git"
// suffix, or "repository" when the URL has none.
func RepoName(repoURL string) string {
	p := strings.TrimSpace(repoURL)
	if u, err := url.Parse(p); err == nil && u.Host != "" {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	p = strings.TrimSuffix(p, ".git")
	if p == "" || strings.Contains(p, "github.com") {
		return "repository"
	}
	return p
}
