package authx

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// roleCacheFile is the fixed slot name the cached role lives under.
const roleCacheFile = "medsta.role"

// RoleCache persists the last known authorization role so it survives
// restarts while the document store is unreachable.
type RoleCache struct {
	fs  afero.Fs
	dir string
}

// NewRoleCache stores the role file under dir on the given filesystem.
func NewRoleCache(fs afero.Fs, dir string) *RoleCache {
	return &RoleCache{fs: fs, dir: dir}
}

func (c *RoleCache) path() string {
	return filepath.Join(c.dir, roleCacheFile)
}

// Put writes the role to the cache slot. Failures are ignored: the
// cache is best effort.
func (c *RoleCache) Put(role string) {
	if err := c.fs.MkdirAll(c.dir, 0o700); err != nil {
		return
	}
	_ = afero.WriteFile(c.fs, c.path(), []byte(role), 0o600)
}

// Get returns the cached role, or "" when the slot is empty or missing.
func (c *RoleCache) Get() string {
	data, err := afero.ReadFile(c.fs, c.path())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Clear removes the cache slot.
func (c *RoleCache) Clear() {
	_ = c.fs.Remove(c.path())
}
