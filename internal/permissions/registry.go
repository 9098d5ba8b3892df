package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Permission describes a single grantable action. The ID doubles as the
// string stored in role permission lists, e.g. "stories.edit".
type Permission struct {
	ID          string `json:"id"`
	Module      string `json:"module"`
	Description string `json:"description"`
}

type permissionRegistry struct {
	mu          sync.RWMutex
	permissions map[string]*Permission
}

var globalRegistry = &permissionRegistry{
	permissions: make(map[string]*Permission),
}

var (
	errNilPermission = errors.New("permission: nil definition")
	errEmptyID       = errors.New("permission: id is required")
	errDuplicateID   = errors.New("permission: already registered")
)

// Register adds a permission definition to the global registry.
func Register(perm *Permission) error {
	if perm == nil {
		return errNilPermission
	}

	id := strings.TrimSpace(perm.ID)
	if id == "" {
		return errEmptyID
	}

	def := clonePermission(perm)
	def.ID = id
	def.Module = strings.TrimSpace(def.Module)

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, exists := globalRegistry.permissions[id]; exists {
		return fmt.Errorf("%w: %s", errDuplicateID, id)
	}

	globalRegistry.permissions[id] = def
	return nil
}

// Get returns a copy of the permission definition when registered.
func Get(id string) (*Permission, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	perm, ok := globalRegistry.permissions[id]
	if !ok {
		return nil, false
	}
	return clonePermission(perm), true
}

// GetAll returns a copy of all registered permissions keyed by ID.
func GetAll() map[string]*Permission {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	out := make(map[string]*Permission, len(globalRegistry.permissions))
	for id, perm := range globalRegistry.permissions {
		out[id] = clonePermission(perm)
	}
	return out
}

// List returns every registered permission ordered by ID.
func List() []*Permission {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	perms := make([]*Permission, 0, len(globalRegistry.permissions))
	for _, perm := range globalRegistry.permissions {
		perms = append(perms, clonePermission(perm))
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i].ID < perms[j].ID })
	return perms
}

// GetByModule gathers permissions registered under the specified module.
func GetByModule(module string) []*Permission {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	module = strings.TrimSpace(module)
	var perms []*Permission
	for _, perm := range globalRegistry.permissions {
		if perm.Module == module {
			perms = append(perms, clonePermission(perm))
		}
	}
	return perms
}

func clonePermission(perm *Permission) *Permission {
	if perm == nil {
		return nil
	}
	cp := *perm
	return &cp
}
