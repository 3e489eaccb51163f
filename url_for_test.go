package spaview

import (
	"context"
	"errors"
	"testing"
)

func Test_formatPathSegments(t *testing.T) {
	withID := WithState(context.Background(), nil, &NavigationState{Params: Params{"id": "5"}})
	tests := []struct {
		name    string
		ctx     context.Context
		pattern string
		args    []any
		want    string
		err     error
	}{
		{
			name:    "root",
			pattern: "/",
			want:    "/",
		},
		{
			name:    "static path",
			pattern: "artists/new",
			want:    "/artists/new",
		},
		{
			name:    "positional args",
			pattern: "artists/:id/albums/:album",
			args:    []any{"1", 2},
			want:    "/artists/1/albums/2",
		},
		{
			name:    "fewer args",
			pattern: "artists/:id/albums/:album",
			args:    []any{"1"},
			want:    "/artists/:id/albums/:album",
			err:     errors.New("pattern /artists/:id/albums/:album: missing arguments for album"),
		},
		{
			name:    "no args",
			pattern: "artists/:id/albums/:album",
			want:    "/artists/:id/albums/:album",
			err:     errors.New("pattern /artists/:id/albums/:album: missing arguments for id, album"),
		},
		{
			name:    "map args",
			pattern: "artists/:id/albums/:album",
			args:    []any{map[string]any{"id": 3, "album": "x"}},
			want:    "/artists/3/albums/x",
		},
		{
			name:    "pair args",
			pattern: "artists/:id/albums/:album",
			args:    []any{"album", 9, "id", 3},
			want:    "/artists/3/albums/9",
		},
		{
			name:    "single pair",
			pattern: "artists/:id",
			args:    []any{"id", 3},
			want:    "/artists/3",
		},
		{
			name:    "value with slash",
			pattern: "artists/:id",
			args:    []any{"a/b"},
			want:    "/artists/:id",
			err:     errors.New(`pattern /artists/:id: invalid value "a/b" for id`),
		},
		{
			name:    "empty value",
			pattern: "artists/:id",
			args:    []any{""},
			want:    "/artists/:id",
			err:     errors.New(`pattern /artists/:id: invalid value "" for id`),
		},
		{
			name:    "params from context",
			ctx:     withID,
			pattern: "artists/:id/edit",
			want:    "/artists/5/edit",
		},
		{
			name:    "context fills the leading params",
			ctx:     withID,
			pattern: "artists/:id/albums/:album",
			args:    []any{7},
			want:    "/artists/5/albums/7",
		},
		{
			name:    "args override context",
			ctx:     withID,
			pattern: "artists/:id/albums/:album",
			args:    []any{8, 9},
			want:    "/artists/8/albums/9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.ctx
			if ctx == nil {
				ctx = context.Background()
			}
			segments, err := parsePattern(tt.pattern)
			if err != nil {
				t.Fatal(err)
			}
			got, err := formatPathSegments(ctx, segments, tt.args...)
			if tt.err != nil {
				if err == nil || err.Error() != tt.err.Error() {
					t.Errorf("formatPathSegments() error = %v, want %v", err, tt.err)
				}
			} else if err != nil {
				t.Errorf("formatPathSegments() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("formatPathSegments() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouteTableURLFor(t *testing.T) {
	tbl := defaultArtistTable(t)
	edit := tbl.Root().Children[2]
	tests := []struct {
		name    string
		target  any
		args    []any
		want    string
		wantErr bool
	}{
		{name: "root by name", target: "Root", want: "/"},
		{name: "literal by name", target: "ArtistCreate", want: "/artists/new"},
		{name: "param by name", target: "ArtistDetail", args: []any{42}, want: "/artists/42"},
		{name: "by node", target: edit, args: []any{"7"}, want: "/artists/7/edit"},
		{
			name:   "by predicate",
			target: func(n *RouteNode) bool { return n.Path == "artists/:id" },
			args:   []any{1},
			want:   "/artists/1",
		},
		{name: "unknown name", target: "Nope", wantErr: true},
		{name: "unsupported target", target: 42, wantErr: true},
		{name: "missing param", target: "ArtistEdit", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.URLFor(context.Background(), tt.target, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("URLFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("URLFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestURLForFromContext(t *testing.T) {
	if _, err := URLFor(context.Background(), "Root"); err == nil {
		t.Error("URLFor without a table in context should fail")
	}

	tbl := defaultArtistTable(t)
	m, _ := tbl.Match("/artists/12")
	ctx := WithState(context.Background(), tbl, newNavigationState(1, "/artists/12", m))
	got, err := URLFor(ctx, "ArtistEdit")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/artists/12/edit" {
		t.Errorf("URLFor() = %q", got)
	}

	// URLFor must not leave values behind in the table's segments.
	got, err = tbl.URLFor(context.Background(), "ArtistDetail", 3)
	if err != nil || got != "/artists/3" {
		t.Errorf("URLFor() = %q, %v", got, err)
	}
	if _, err := tbl.URLFor(context.Background(), "ArtistDetail"); err == nil {
		t.Error("expected missing argument error after earlier calls")
	}
}
