// Package component exposes icons as templ components.
//
//	@component.Icon(icons, "tabler:home", icon.NewAttributes("class", "w-6"))
package component

import (
	"context"
	"errors"
	"io"

	"github.com/a-h/templ"

	"github.com/go-drift/icons/pkg/icon"
	"github.com/go-drift/icons/pkg/manager"
)

var errNoDefault = errors.New("component: no default icon manager")

// Icon renders name through m. Resolution happens when the component is
// rendered, and a failed lookup fails the render.
func Icon(m *manager.Manager, name string, attrs icon.Attributes) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		markup, err := m.Render(name, attrs)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, markup)
		return err
	})
}

// OrEmpty renders like Icon but writes nothing when the icon cannot be
// resolved. Configure the manager with IgnoreNotFound or a fallback to get a
// placeholder instead.
func OrEmpty(m *manager.Manager, name string, attrs icon.Attributes) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		markup, err := m.Render(name, attrs)
		if err != nil {
			return nil
		}
		_, err = io.WriteString(w, markup)
		return err
	})
}

// Default renders name through the process-wide manager. It fails the render
// when no manager has been installed with manager.SetDefault.
func Default(name string, attrs icon.Attributes) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := manager.Default()
		if m == nil {
			return errNoDefault
		}
		return Icon(m, name, attrs).Render(ctx, w)
	})
}
