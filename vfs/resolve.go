package vfs

import (
	"context"
	"fmt"
	"strings"
)

// ChainEntry is one (name, item) pair in a resolution chain. Item is nil
// when the name does not exist in its parent directory (spec.md §4.5).
type ChainEntry struct {
	Name string
	Item *Item
}

// Chain is the ordered resolution path returned by Resolve/LResolve and
// carried by ResolveError as a diagnostic terminus.
type Chain []ChainEntry

// Clone returns an independent copy of the chain's entry list. Entries
// themselves (the *Item pointers) are shared, since items are treated as
// immutable once produced; only the entry list is duplicated, into a new
// backing array, so that appending to one copy never writes into the other's.
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	copy(out, c)
	return out
}

// Names extracts the name sequence, the form spec.md §8's scenarios use to
// describe a terminus.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name
	}
	return names
}

// Resolve follows symlinks on every path component, including the last
// (spec.md §4.5).
func Resolve(ctx context.Context, repo *Repo, path string, parent Chain) (Chain, error) {
	return resolveChain(ctx, repo, path, parent, true)
}

// LResolve follows symlinks on every intermediate component but not the
// last (spec.md §4.5).
func LResolve(ctx context.Context, repo *Repo, path string, parent Chain) (Chain, error) {
	return resolveChain(ctx, repo, path, parent, false)
}

func resolveChain(ctx context.Context, repo *Repo, path string, parent Chain, followLast bool) (Chain, error) {
	var chain Chain
	if strings.HasPrefix(path, "/") || parent == nil {
		chain = Chain{{Name: "", Item: NewRoot()}}
	} else {
		tail := parent[len(parent)-1]
		if tail.Item == nil || !tail.Item.IsDirLike() {
			return nil, newResolveError(ErrNotADirectory, nil, "parent is not a directory")
		}
		chain = parent.Clone()
	}

	components := strings.Split(path, "/")
	budget := repo.Config.SymlinkBudget

	for len(components) > 0 {
		c := components[0]
		components = components[1:]
		isLast := len(components) == 0

		switch c {
		case "", ".":
			tail := chain[len(chain)-1]
			if tail.Item == nil || !tail.Item.IsDirLike() {
				return nil, newResolveError(ErrNotADirectory, chain, fmt.Sprintf("%q is not a directory", tail.Name))
			}
			continue
		case "..":
			chain = popChain(chain)
			continue
		}

		tail := chain[len(chain)-1]
		if tail.Item == nil || !tail.Item.IsDirLike() {
			return nil, newResolveError(ErrNotADirectory, chain, fmt.Sprintf("%q is not a directory", tail.Name))
		}

		entries, err := Contents(ctx, repo, tail.Item)
		if err != nil {
			return nil, err
		}

		found := lookupEntry(entries, c)
		if found == nil {
			chain = append(chain, ChainEntry{Name: c, Item: nil})
			if isLast {
				return chain, nil
			}
			return nil, newResolveError(ErrNotADirectory, chain, fmt.Sprintf("%q does not exist", c))
		}

		chain = append(chain, ChainEntry{Name: c, Item: found})

		if found.IsSymlink() && (followLast || !isLast) {
			budget--
			if budget < 0 {
				return nil, newResolveError(ErrTooManyLinks, chain, "symlink budget exhausted")
			}

			target, err := Readlink(ctx, repo, found)
			if err != nil {
				return nil, err
			}

			if strings.HasPrefix(target, "/") {
				chain = Chain{{Name: "", Item: NewRoot()}}
			} else {
				chain = popChain(chain)
			}
			components = append(strings.Split(target, "/"), components...)
		}
	}

	return chain, nil
}

func popChain(chain Chain) Chain {
	if len(chain) <= 1 {
		return chain
	}
	return chain[:len(chain)-1]
}

func lookupEntry(entries []DirEntry, name string) *Item {
	for _, e := range entries {
		if e.Name == name {
			return e.Item
		}
	}
	return nil
}
