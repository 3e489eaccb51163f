package spaview

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"

	"github.com/a-h/templ"
)

func TestMountKeepsContentOnRenderError(t *testing.T) {
	m := NewMount()
	state := &NavigationState{Path: "/a"}
	if err := m.Render(context.Background(), Frame{State: state, Phase: PhaseReady, Component: textView("a", "A").Component}); err != nil {
		t.Fatal(err)
	}

	broken := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("broken")
	})
	err := m.Render(context.Background(), Frame{State: &NavigationState{Path: "/b"}, Phase: PhaseReady, Component: broken})
	if err == nil {
		t.Fatal("expected render error")
	}
	if m.HTML() != "A" || m.Frame().State != state {
		t.Errorf("mount changed after failed render: %q", m.HTML())
	}
}

func TestMountHistory(t *testing.T) {
	m := NewMount()
	for i := range mountHistory + 5 {
		f := Frame{State: &NavigationState{Path: strconv.Itoa(i)}, Phase: PhaseReady}
		if err := m.Render(context.Background(), f); err != nil {
			t.Fatal(err)
		}
	}
	h := m.History()
	if len(h) != mountHistory {
		t.Fatalf("len(History()) = %d, want %d", len(h), mountHistory)
	}
	if h[0].State.Path != "5" || h[len(h)-1].State.Path != strconv.Itoa(mountHistory+4) {
		t.Errorf("history holds %s..%s", h[0].State.Path, h[len(h)-1].State.Path)
	}
	if m.HTML() != "" {
		t.Errorf("frame without component rendered %q", m.HTML())
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name  string
		comps []templ.Component
		want  string
	}{
		{name: "none", want: ""},
		{name: "single", comps: []templ.Component{textView("a", "a").Component}, want: "a"},
		{
			name: "nested",
			comps: []templ.Component{
				layoutView("outer").Component,
				layoutView("inner").Component,
				textView("leaf", "leaf").Component,
			},
			want: "<outer><inner>leaf</inner></outer>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := getBuffer()
			defer releaseBuffer(buf)
			if err := compose(tt.comps...).Render(context.Background(), buf); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("compose() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPartialStopsAtMissingView(t *testing.T) {
	views := []*View{layoutView("outer"), nil, textView("leaf", "leaf")}
	buf := getBuffer()
	defer releaseBuffer(buf)
	if err := partial(views, defaultLoadingView).Render(context.Background(), buf); err != nil {
		t.Fatal(err)
	}
	if want := "<outer>" + loadingHTML + "</outer>"; buf.String() != want {
		t.Errorf("partial() = %q, want %q", buf.String(), want)
	}
}
