// Package source obtains docs exports: it mirrors the upstream compiler
// repository, pins the Rust toolchain the checkout expects, and runs the
// docs export for each release tag.
package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/typdocs/internal/errors"
	"git.home.luguber.info/inful/typdocs/internal/logfields"
)

// Repo wraps a local checkout of the upstream repository.
type Repo struct {
	url  string
	path string
	repo *git.Repository
}

// OpenOrClone opens the checkout at path, cloning from url first when it does
// not exist. Existing checkouts get their tags refreshed.
func OpenOrClone(ctx context.Context, url, path string) (*Repo, error) {
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		repository, err := git.PlainOpen(path)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryGit, "failed to open repository")
		}
		r := &Repo{url: url, path: path, repo: repository}
		if err := r.fetchTags(ctx); err != nil {
			return nil, err
		}
		return r, nil
	}

	slog.Info("Cloning repository", slog.String("url", url), logfields.Path(path))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create repository parent directory")
	}

	repository, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to clone repository").
			WithContext("url", url)
	}
	return &Repo{url: url, path: path, repo: repository}, nil
}

// Path returns the checkout directory.
func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) fetchTags(ctx context.Context) error {
	slog.Debug("Fetching tags", logfields.Path(r.path))
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{"+refs/tags/*:refs/tags/*"},
		Tags:       git.AllTags,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return errors.WrapError(err, errors.CategoryGit, "failed to fetch tags")
	}
	return nil
}

// Tags returns all tag names in the checkout.
func (r *Repo) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to list tags")
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to iterate tags")
	}
	return tags, nil
}

// Checkout force-checks-out a tag, discarding local changes.
func (r *Repo) Checkout(tag string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "failed to get worktree")
	}

	slog.Info("Checking out tag", logfields.Tag(tag))
	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewTagReferenceName(tag),
		Force:  true,
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryGit, "failed to checkout tag").
			WithContext("tag", tag)
	}
	return nil
}
