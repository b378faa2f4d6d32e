// Package tagstore implements the per-tool on-disk tag layout: concrete
// install directories, alias links, ".tmp." scratch areas, and the "default"
// alias convention.
package tagstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avmtools/avm/internal/log"
)

// ScratchPrefix marks a tag name as internal scratch, never user-visible.
const ScratchPrefix = ".tmp."

// DefaultAlias is the only alias tag name that may never be a concrete
// directory.
const DefaultAlias = "default"

// Store operates on a single tool's tag directory.
type Store struct {
	ToolDir string
	Logger  log.Logger
}

// New builds a Store rooted at toolDir. A nil logger falls back to the
// process-global default.
func New(toolDir string, logger log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{ToolDir: toolDir, Logger: logger}
}

// ErrNotFound is returned when a named tag does not exist.
type ErrNotFound struct{ Tag string }

func (e *ErrNotFound) Error() string { return fmt.Sprintf("tagstore: tag %q not found", e.Tag) }

// ErrNotAnAlias is returned when an operation expecting an alias finds a
// real directory instead.
type ErrNotAnAlias struct{ Tag string }

func (e *ErrNotAnAlias) Error() string {
	return fmt.Sprintf("tagstore: tag %q exists and is not an alias", e.Tag)
}

// ErrAliasTarget is returned by Delete when the tag being deleted is the
// target of an existing alias and allowDangling was not set.
type ErrAliasTarget struct {
	Tag   string
	Alias string
}

func (e *ErrAliasTarget) Error() string {
	return fmt.Sprintf("tagstore: tag %q is an alias target of %q, delete the alias first", e.Tag, e.Alias)
}

// ErrAlreadyExists is returned when a destination tag already exists.
type ErrAlreadyExists struct{ Tag string }

func (e *ErrAlreadyExists) Error() string {
	return fmt.Sprintf("tagstore: tag %q already exists", e.Tag)
}

// ErrReserved is returned for operations on reserved tag names.
type ErrReserved struct{ Tag, Reason string }

func (e *ErrReserved) Error() string {
	return fmt.Sprintf("tagstore: tag %q is reserved: %s", e.Tag, e.Reason)
}

// Entry is one top-level tag: its name, and — for aliases — the file-name
// component of its link target.
type Entry struct {
	Name   string
	Target string // empty for concrete directories
}

// List returns every top-level entry whose name does not start with
// ignorePrefix (ScratchPrefix in production use). A missing tool directory
// yields an empty list, not an error.
func (s *Store) List(ignorePrefix string) ([]Entry, error) {
	entries, err := os.ReadDir(s.ToolDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tagstore: listing %s: %w", s.ToolDir, err)
	}

	var out []Entry
	for _, e := range entries {
		name := e.Name()
		if ignorePrefix != "" && strings.HasPrefix(name, ignorePrefix) {
			continue
		}
		path := filepath.Join(s.ToolDir, name)
		target, isLink, err := readLinkTarget(path)
		if err != nil {
			return nil, fmt.Errorf("tagstore: inspecting %s: %w", path, err)
		}
		if isLink {
			out = append(out, Entry{Name: name, Target: filepath.Base(target)})
		} else {
			out = append(out, Entry{Name: name})
		}
	}
	return out, nil
}

// readLinkTarget reports whether path is a symlink/junction and, if so, its
// target.
func readLinkTarget(path string) (target string, isLink bool, err error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", false, err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", false, nil
	}
	target, err = os.Readlink(path)
	if err != nil {
		return "", false, err
	}
	return target, true, nil
}

// Alias creates alias_path as a link to src_path, requiring srcTag to
// already exist. If aliasTag exists and is itself a link, it is replaced;
// if it exists and is a real directory, Alias fails with ErrNotAnAlias.
func (s *Store) Alias(srcTag, aliasTag string) error {
	srcPath := filepath.Join(s.ToolDir, srcTag)
	if _, err := os.Stat(srcPath); err != nil {
		return &ErrNotFound{Tag: srcTag}
	}

	aliasPath := filepath.Join(s.ToolDir, aliasTag)
	info, err := os.Lstat(aliasPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Nothing to replace.
	case err != nil:
		return fmt.Errorf("tagstore: checking alias tag %q: %w", aliasTag, err)
	case info.Mode()&os.ModeSymlink != 0:
		if err := removeLink(aliasPath); err != nil {
			return fmt.Errorf("tagstore: removing existing alias %q: %w", aliasTag, err)
		}
	default:
		return &ErrNotAnAlias{Tag: aliasTag}
	}

	if err := createLink(srcPath, aliasPath); err != nil {
		return fmt.Errorf("tagstore: creating alias %q -> %q: %w", aliasTag, srcTag, err)
	}
	return nil
}

// Copy recursively copies srcTag's directory to destTag. destTag must not
// already exist, and "default" may never be a concrete copy target.
func (s *Store) Copy(srcTag, destTag string) error {
	if destTag == DefaultAlias {
		return &ErrReserved{Tag: destTag, Reason: "default tag is only allowed as an alias tag"}
	}

	srcPath := filepath.Join(s.ToolDir, srcTag)
	if _, err := os.Stat(srcPath); err != nil {
		return &ErrNotFound{Tag: srcTag}
	}

	destPath := filepath.Join(s.ToolDir, destTag)
	if _, err := os.Lstat(destPath); err == nil {
		return &ErrAlreadyExists{Tag: destTag}
	}

	return copyDir(srcPath, destPath)
}

// Delete removes each named tag. Unless allowDangling, a tag that is the
// target of any existing alias is rejected before any removal happens, so a
// rejected deletion leaves the store unchanged.
func (s *Store) Delete(tags []string, allowDangling bool) error {
	if !allowDangling {
		entries, err := s.List(ScratchPrefix)
		if err != nil {
			return err
		}
		for _, tag := range tags {
			for _, e := range entries {
				if e.Target == tag {
					return &ErrAliasTarget{Tag: tag, Alias: e.Name}
				}
			}
		}
	}

	for _, tag := range tags {
		path := filepath.Join(s.ToolDir, tag)
		if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
			return &ErrNotFound{Tag: tag}
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("tagstore: deleting tag %q: %w", tag, err)
		}
	}
	return nil
}

// GetTagPath resolves tag to its directory, failing if it does not exist.
func (s *Store) GetTagPath(tag string) (string, error) {
	path := filepath.Join(s.ToolDir, tag)
	if _, err := os.Stat(path); err != nil {
		return "", &ErrNotFound{Tag: tag}
	}
	return path, nil
}

// Clean removes every scratch directory and every dangling alias under
// ToolDir. Per-entry failures are logged and the loop continues; a missing
// ToolDir is success.
func (s *Store) Clean() error {
	entries, err := os.ReadDir(s.ToolDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tagstore: reading %s: %w", s.ToolDir, err)
	}

	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(s.ToolDir, name)

		if strings.HasPrefix(name, ScratchPrefix) {
			if err := os.RemoveAll(path); err != nil {
				s.Logger.Warn("clean: failed to remove scratch entry", "tag", name, "error", err)
			}
			continue
		}

		target, isLink, err := readLinkTarget(path)
		if err != nil {
			s.Logger.Warn("clean: failed to inspect entry", "tag", name, "error", err)
			continue
		}
		if !isLink {
			continue
		}

		resolved := target
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(s.ToolDir, target)
		}
		if _, err := os.Stat(resolved); errors.Is(err, os.ErrNotExist) {
			if err := removeLink(path); err != nil {
				s.Logger.Warn("clean: failed to remove dangling alias", "tag", name, "error", err)
			}
		}
	}
	return nil
}

func copyDir(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	}

	if info.IsDir() {
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return err
		}
		children, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := copyDir(filepath.Join(src, child.Name()), filepath.Join(dst, child.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	return copyFile(src, dst, info.Mode().Perm())
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.ReadFrom(in)
	return err
}
