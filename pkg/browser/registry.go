package browser

import "time"

// PageHandle pairs a registered page name with its tab and the browser
// generation it belongs to. Handles from an older generation are invalid.
type PageHandle struct {
	Name       string
	Tab        Tab
	Generation uint64
	CreatedAt  time.Time
}

// PageRegistry tracks the named pages open in one browser generation and
// which of them is active. Like BrowserHandle it is owned and serialized
// by the SessionManager; it does no locking of its own.
type PageRegistry struct {
	pages      map[string]*PageHandle
	order      []string
	active     string
	generation uint64
}

// NewPageRegistry creates an empty registry for the given browser
// generation. The session manager populates it with the default page
// immediately after launch, so observers never see it empty.
func NewPageRegistry(generation uint64) *PageRegistry {
	return &PageRegistry{
		pages:      make(map[string]*PageHandle),
		generation: generation,
	}
}

// Generation returns the browser generation this registry belongs to.
func (r *PageRegistry) Generation() uint64 {
	return r.generation
}

// Len returns the number of registered pages.
func (r *PageRegistry) Len() int {
	return len(r.pages)
}

// CreatePage registers a tab under the given name. The new page becomes
// active only when no page was active before.
func (r *PageRegistry) CreatePage(name string, tab Tab) (*PageHandle, error) {
	if _, exists := r.pages[name]; exists {
		return nil, &DuplicateNameError{Name: name}
	}

	handle := &PageHandle{
		Name:       name,
		Tab:        tab,
		Generation: r.generation,
		CreatedAt:  time.Now(),
	}
	r.pages[name] = handle
	r.order = append(r.order, name)

	if r.active == "" {
		r.active = name
	}
	return handle, nil
}

// GetPage returns the handle registered under name.
func (r *PageRegistry) GetPage(name string) (*PageHandle, error) {
	handle, exists := r.pages[name]
	if !exists {
		return nil, &NotFoundError{Name: name}
	}
	return handle, nil
}

// SwitchActive makes the named page the target of operations that omit a
// page name.
func (r *PageRegistry) SwitchActive(name string) error {
	if _, exists := r.pages[name]; !exists {
		return &NotFoundError{Name: name}
	}
	r.active = name
	return nil
}

// ActivePage returns the currently active page. It fails only on an empty
// registry, which the session manager invariants rule out.
func (r *PageRegistry) ActivePage() (*PageHandle, error) {
	if r.active == "" {
		return nil, ErrNoActivePage
	}
	handle, exists := r.pages[r.active]
	if !exists {
		return nil, ErrNoActivePage
	}
	return handle, nil
}

// ActiveName returns the name of the active page, or "" for an empty
// registry.
func (r *PageRegistry) ActiveName() string {
	return r.active
}

// ClosePage closes the named page's tab and removes it. Closing the last
// remaining page is rejected so the registry never empties while the
// browser lives. When the active page is closed, the most recently created
// remaining page becomes active.
func (r *PageRegistry) ClosePage(name string) error {
	handle, exists := r.pages[name]
	if !exists {
		return &NotFoundError{Name: name}
	}
	if len(r.pages) == 1 {
		return ErrLastPage
	}

	_ = handle.Tab.Close() // Ignore errors, continue cleanup
	delete(r.pages, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if r.active == name {
		r.active = r.order[len(r.order)-1]
	}
	return nil
}

// ListPages returns a snapshot of all pages in creation order.
func (r *PageRegistry) ListPages() []PageInfo {
	infos := make([]PageInfo, 0, len(r.order))
	for _, name := range r.order {
		handle := r.pages[name]
		infos = append(infos, PageInfo{
			Name:   name,
			URL:    handle.Tab.URL(),
			Active: name == r.active,
		})
	}
	return infos
}

// Names returns the registered page names in creation order.
func (r *PageRegistry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Teardown invalidates every page handle at once. When closeTabs is true
// the tabs are closed individually; after a crash they are already gone
// and only the bookkeeping is dropped.
func (r *PageRegistry) Teardown(closeTabs bool) {
	if closeTabs {
		for _, name := range r.order {
			_ = r.pages[name].Tab.Close()
		}
	}
	r.pages = make(map[string]*PageHandle)
	r.order = nil
	r.active = ""
}
