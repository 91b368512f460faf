// Package category resolves category names to their icon and color and
// manages each user's custom categories.
package category

import (
	"task-secretary-api/internal/models"
)

// Style is how a category is drawn.
type Style struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// DefaultStyle is used for names nobody defined, including deleted categories.
var DefaultStyle = Style{Icon: "question", Color: "#808080"}

// Presets are available to every user and cannot be deleted.
var Presets = []models.Category{
	{ID: "work", Name: "工作", Icon: "cog", Color: "#3B82F6"},
	{ID: "life", Name: "生活", Icon: "home", Color: "#FFA500"},
	{ID: "study", Name: "学习", Icon: "book", Color: "#00B4D8"},
	{ID: "health", Name: "健康", Icon: "running", Color: "#10B981"},
	{ID: "other", Name: "其他", Icon: "question", Color: "#808080"},
}

// Registry maps category names to styles: the presets overlaid by custom
// categories.
type Registry struct {
	styles map[string]Style
}

func NewRegistry(custom []models.Category) *Registry {
	r := &Registry{styles: make(map[string]Style, len(Presets)+len(custom))}
	for _, c := range Presets {
		r.styles[c.Name] = Style{Icon: c.Icon, Color: c.Color}
	}
	for _, c := range custom {
		r.styles[c.Name] = Style{Icon: c.Icon, Color: c.Color}
	}
	return r
}

// Resolve never fails; unknown names get DefaultStyle.
func (r *Registry) Resolve(name string) Style {
	if s, ok := r.styles[name]; ok {
		return s
	}
	return DefaultStyle
}

// Known reports whether name is a preset or custom category.
func (r *Registry) Known(name string) bool {
	_, ok := r.styles[name]
	return ok
}

func isPreset(name string) bool {
	for _, c := range Presets {
		if c.Name == name {
			return true
		}
	}
	return false
}
