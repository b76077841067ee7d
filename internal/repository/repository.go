// Package repository detects version-control details of the project
// directory, used to autodetect the repository URL in generated site
// configuration.
package repository

import (
	"strings"

	git "github.com/go-git/go-git/v5"
)

// Details describes the repository containing the project directory.
type Details struct {
	// URL is the first remote's fetch URL, normalized to HTTPS form.
	URL string

	// Branch is the currently checked out branch, or empty on a detached
	// HEAD.
	Branch string
}

// Detect opens the repository containing path and extracts its details.
// Returns false when path is not inside a git repository or the repository
// has no remotes.
func Detect(path string) (Details, bool) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Details{}, false
	}

	remotes, err := repo.Remotes()
	if err != nil || len(remotes) == 0 {
		return Details{}, false
	}
	urls := remotes[0].Config().URLs
	if len(urls) == 0 {
		return Details{}, false
	}

	details := Details{URL: normalizeURL(urls[0])}
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		details.Branch = head.Name().Short()
	}
	return details, true
}

// normalizeURL does a simplistic conversion of SSH remote URLs to HTTPS and
// strips the .git suffix.
func normalizeURL(url string) string {
	if rest, ok := strings.CutPrefix(url, "git@"); ok {
		url = "https://" + strings.Replace(rest, ":", "/", 1)
	}
	return strings.TrimSuffix(url, ".git")
}
