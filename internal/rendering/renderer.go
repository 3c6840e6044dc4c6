package rendering

import (
	"context"
	"sort"

	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// Document is what a renderer receives: one item's metadata and content
type Document struct {
	ItemID   string
	Title    string
	Kind     types.DocumentKind
	Audience string
	Content  *types.Content
}

// DocumentFor builds the render input for a work item.
func DocumentFor(item *types.WorkItem) Document {
	return Document{
		ItemID:   item.ID,
		Title:    item.Title,
		Kind:     item.Kind,
		Audience: item.TargetAudience,
		Content:  item.Content,
	}
}

// DisplayTitle prefers the content's own title.
func (d Document) DisplayTitle() string {
	if d.Content != nil && d.Content.Metadata.Title != "" {
		return d.Content.Metadata.Title
	}
	if d.Title != "" {
		return d.Title
	}
	return d.ItemID
}

// Renderer produces the bytes of one format. Implementations are synchronous.
type Renderer interface {
	Format() types.Format
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Registry maps formats to renderers
type Registry struct {
	renderers map[types.Format]Renderer
}

// NewRegistry creates a registry holding the given renderers.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[types.Format]Renderer)}
	for _, rr := range renderers {
		r.Register(rr)
	}
	return r
}

// DefaultRegistry registers every built-in renderer. pdf may be nil to leave PDF unsupported.
func DefaultRegistry(pdf Renderer) *Registry {
	html := NewHTMLRenderer()
	r := NewRegistry(html, MarkdownRenderer{}, JSONRenderer{}, YAMLRenderer{}, XLSXRenderer{})
	if pdf != nil {
		r.Register(pdf)
	}
	return r
}

// Register adds or replaces the renderer for its format.
func (r *Registry) Register(rr Renderer) {
	r.renderers[rr.Format()] = rr
}

// Lookup returns the renderer for f.
func (r *Registry) Lookup(f types.Format) (Renderer, bool) {
	rr, ok := r.renderers[f]
	return rr, ok
}

// Formats lists the supported formats.
func (r *Registry) Formats() []types.Format {
	out := make([]types.Format, 0, len(r.renderers))
	for f := range r.renderers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// substitutes names the format rendered in place of one with no renderer.
var substitutes = map[types.Format]types.Format{
	types.FormatDOCX: types.FormatHTML,
	types.FormatPDF:  types.FormatHTML,
}
