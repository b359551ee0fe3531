// Package gitrepo provides the two repository collaborators the pipeline
// consumes: the staged-diff source and the commit sink. The repository is
// handled with go-git; the staged patch text itself comes from the git
// CLI, since go-git has no tree-vs-index patch API.
package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog/log"

	"github.com/JakeFAU/gitai/internal/diff"
)

// Sentinel conditions a caller may want to branch on.
var (
	// ErrNoHead indicates the repository has no prior commit to diff against.
	ErrNoHead = errors.New("repository has no commits yet")
	// ErrNothingStaged indicates the index matches HEAD; there is nothing to describe.
	ErrNothingStaged = errors.New("nothing is staged for commit")
	// ErrNoIdentity indicates no author name/email could be resolved.
	ErrNoIdentity = errors.New("could not resolve a commit identity (user.name / user.email)")
	// ErrNoSigningKey indicates signing was requested but no usable key was found.
	ErrNoSigningKey = errors.New("commit signing requested but no usable signing key")
)

// Options controls identity and signing for commits. Empty identity fields
// fall back to the repository's git config.
type Options struct {
	UserName       string
	UserEmail      string
	SignCommits    bool
	SigningKeyPath string
}

// Repo wraps an opened repository plus the options used for commits.
type Repo struct {
	repo *git.Repository
	root string
	opts Options
}

// Open opens the repository containing path, searching upward for .git the
// way the git CLI does.
func Open(path string, opts Options) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("resolving worktree: %w", err)
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root(), opts: opts}, nil
}

// Root returns the worktree root directory.
func (r *Repo) Root() string { return r.root }

// StageAll stages every change in the worktree, the same as "git add -A".
// Used by auto-add mode before diffing.
func (r *Repo) StageAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("resolving worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}
	return nil
}

// StagedDiff returns the parsed diff of the index against HEAD, i.e. what
// "git diff --cached" shows. Fails with ErrNoHead when there is no prior
// commit and ErrNothingStaged when the staged diff is empty.
func (r *Repo) StagedDiff() (diff.Diff, error) {
	if _, err := r.repo.Head(); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoHead
		}
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	cmd := exec.Command("git", "diff", "--cached", "--no-color")
	cmd.Dir = r.root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff --cached: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	parsed, err := diff.Parse(string(out))
	if err != nil {
		return nil, fmt.Errorf("parsing staged diff: %w", err)
	}
	if parsed.Empty() {
		return nil, ErrNothingStaged
	}
	return parsed, nil
}

// Commit writes a commit of the current index with the given message and
// returns the new commit hash. Identity comes from Options or, failing
// that, the repository's merged git config.
func (r *Repo) Commit(message string) (string, error) {
	name, email, err := r.resolveIdentity()
	if err != nil {
		return "", err
	}

	commitOpts := &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: time.Now()},
	}
	if r.opts.SignCommits {
		entity, err := loadSigningKey(r.opts.SigningKeyPath)
		if err != nil {
			return "", err
		}
		commitOpts.SignKey = entity
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("resolving worktree: %w", err)
	}
	hash, err := wt.Commit(message, commitOpts)
	if err != nil {
		return "", fmt.Errorf("writing commit: %w", err)
	}
	log.Debug().Str("commit", hash.String()).Str("author", name).Msg("commit created")
	return hash.String(), nil
}

// resolveIdentity picks the commit author: explicit options first, then
// the repository's merged (local < global < system) git config.
func (r *Repo) resolveIdentity() (name, email string, err error) {
	name, email = r.opts.UserName, r.opts.UserEmail
	if name != "" && email != "" {
		return name, email, nil
	}
	cfg, cfgErr := r.repo.ConfigScoped(gitconfig.SystemScope)
	if cfgErr != nil {
		return "", "", fmt.Errorf("reading git config: %w", cfgErr)
	}
	name, email = pickIdentity(name, email, cfg.User.Name, cfg.User.Email)
	if name == "" || email == "" {
		return "", "", ErrNoIdentity
	}
	return name, email, nil
}

// pickIdentity applies the override-then-config fallback for each field
// independently.
func pickIdentity(optName, optEmail, cfgName, cfgEmail string) (string, string) {
	name := optName
	if name == "" {
		name = cfgName
	}
	email := optEmail
	if email == "" {
		email = cfgEmail
	}
	return name, email
}

// loadSigningKey reads an armored PGP private key from path. Any failure
// to produce a usable private key maps to ErrNoSigningKey.
func loadSigningKey(path string) (*openpgp.Entity, error) {
	if path == "" {
		return nil, ErrNoSigningKey
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSigningKey, err)
	}
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSigningKey, err)
	}
	for _, e := range entities {
		if e.PrivateKey != nil {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no private key in %s", ErrNoSigningKey, path)
}
