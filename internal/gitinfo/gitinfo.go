// Package gitinfo records content source provenance. Fetching and transport
// stay out of scope; this only reads the HEAD of an existing checkout.
package gitinfo

import (
	"github.com/go-git/go-git/v5"
)

// HeadCommit returns the HEAD commit hash of the repository containing dir,
// or "" when dir is not inside a git checkout. Sources synced by other means
// simply carry no commit in the manifest inputs.
func HeadCommit(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}
