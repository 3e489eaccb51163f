package spaview

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

var (
	defaultLoadingView = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="spaview-loading">Loading...</div>`)
		return err
	})
	defaultNotFoundView = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="spaview-not-found">Not Found</div>`)
		return err
	})
)

func defaultErrorView(err error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, werr := io.WriteString(w, `<div class="spaview-error">`+templ.EscapeString(err.Error())+`</div>`)
		return werr
	})
}

// compose nests components so that each one renders the next as its children.
func compose(components ...templ.Component) templ.Component {
	if len(components) == 0 {
		return templ.NopComponent
	}
	inner := components[len(components)-1]
	for i := len(components) - 2; i >= 0; i-- {
		layout, child := components[i], inner
		inner = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return layout.Render(templ.WithChildren(ctx, child), w)
		})
	}
	return inner
}
