package catalogview

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Category configures one view.
type Category struct {
	Name         string
	DisplayLabel string
	FetchPath    string
	// ErrorMessage is shown when the catalog gives no message of its own.
	ErrorMessage string
}

var DefaultCategories = []Category{
	{Name: "Books", DisplayLabel: "Books", FetchPath: "/api/products/category/Books", ErrorMessage: "Failed to load books. Please try again later."},
	{Name: "Calculators", DisplayLabel: "Calculators", FetchPath: "/api/products/category/Calculators", ErrorMessage: "Failed to fetch calculators"},
	{Name: "Labcoats", DisplayLabel: "Lab Coats", FetchPath: "/api/products/category/Labcoats", ErrorMessage: "Failed to load lab coats. Please try again later."},
	{Name: "Drafters", DisplayLabel: "Drafters", FetchPath: "/api/products/category/Drafters", ErrorMessage: "Failed to fetch drafters"},
	{Name: "EgKit", DisplayLabel: "EG Kits", FetchPath: "/api/products/category/EgKit", ErrorMessage: "Failed to load EG Kits. Please try again later."},
	{Name: "EgContainer", DisplayLabel: "EG Containers", FetchPath: "/api/products/category/EgContainer", ErrorMessage: "Failed to load gadgets. Please try again later."},
}

// Registry owns one View per configured category.
type Registry struct {
	order []string
	views map[string]*View
}

func NewRegistry(categories []Category, fetcher Fetcher, bus Subscriber, log *zap.Logger) *Registry {
	r := &Registry{views: make(map[string]*View, len(categories))}
	for _, c := range categories {
		key := categoryKey(c.Name)
		r.order = append(r.order, key)
		r.views[key] = NewView(c, fetcher, bus, log)
	}
	return r
}

func (r *Registry) MountAll(ctx context.Context) {
	for _, key := range r.order {
		r.views[key].Mount(ctx)
	}
}

func (r *Registry) UnmountAll() {
	for _, key := range r.order {
		r.views[key].Unmount()
	}
}

// View looks a category up case-insensitively, ignoring separators and a
// trailing "s".
func (r *Registry) View(name string) (*View, bool) {
	v, ok := r.views[categoryKey(name)]
	return v, ok
}

func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.views[key].Snapshot())
	}
	return out
}

func categoryKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '-', '_', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSuffix(b.String(), "s")
}
