package artists

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/jackielii/spaview"
)

// Home is the application layout; the matched view renders inside it.
var Home = &spaview.View{
	Name: "Home",
	Component: templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="container">`); err != nil {
			return err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	}),
}

// ArtistMain lists the sample artists.
var ArtistMain = &spaview.View{
	Name: "ArtistMain",
	Component: templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		newURL, err := spaview.URLFor(ctx, RouteCreate)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<div class="artist-main"><a href="%s">Create Artist</a><ul>`,
			templ.EscapeString(newURL)); err != nil {
			return err
		}
		for _, a := range sample {
			href, err := spaview.URLFor(ctx, RouteDetail, a.ID)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`,
				templ.EscapeString(href), templ.EscapeString(a.Name)); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</ul></div>`)
		return err
	}),
}

func artistCreate() *spaview.View {
	return &spaview.View{
		Name: "ArtistCreate",
		Component: templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := io.WriteString(w, `<div class="artist-create"><h3>Create an Artist</h3></div>`)
			return err
		}),
	}
}

func artistDetail() *spaview.View {
	return &spaview.View{
		Name: "ArtistDetail",
		Component: templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			id := spaview.ParamsFrom(ctx).Get("id")
			edit, err := spaview.URLFor(ctx, RouteEdit)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, `<div class="artist-detail"><h3>Artist %s</h3><a href="%s">Edit</a></div>`,
				templ.EscapeString(id), templ.EscapeString(edit))
			return err
		}),
	}
}

func artistEdit() *spaview.View {
	return &spaview.View{
		Name: "ArtistEdit",
		Component: templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			id := spaview.ParamsFrom(ctx).Get("id")
			_, err := fmt.Fprintf(w, `<div class="artist-edit"><h3>Edit Artist %s</h3></div>`, templ.EscapeString(id))
			return err
		}),
	}
}

type artist struct {
	ID   string
	Name string
}

var sample = []artist{
	{ID: "1", Name: "Nina Simone"},
	{ID: "2", Name: "Miles Davis"},
	{ID: "3", Name: "Ella Fitzgerald"},
}
