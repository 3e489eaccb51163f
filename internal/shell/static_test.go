package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticRelPath(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "/", wantOK: false},
		{in: "", wantOK: false},
		{in: "/app.js", want: "app.js", wantOK: true},
		{in: "/assets/app.js", want: "assets/app.js", wantOK: true},
		{in: "/assets//app.js", want: "assets/app.js", wantOK: true},
		{in: "/assets/", want: "assets", wantOK: true},
		{in: "//etc/passwd", wantOK: false},
		{in: "/../etc/passwd", wantOK: false},
		{in: "/assets/../index.html", wantOK: false},
		{in: "/./app.js", wantOK: false},
		{in: "/assets\\..\\secret", wantOK: false},
		{in: "/app\x00.js", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := staticRelPath(tt.in)
		assert.Equal(t, tt.wantOK, ok, "staticRelPath(%q)", tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "staticRelPath(%q)", tt.in)
		}
	}
}

func TestIsFingerprinted(t *testing.T) {
	tests := map[string]bool{
		"assets/app.0123abcd.js":  true,
		"assets/app.ABCDEF12.css": true,
		"app.js":                  false,
		"app.min.js":              false,
		"app.1234.js":             false,
		"app.0123abcz.js":         false,
		"0123abcd.js":             false,
	}
	for name, want := range tests {
		assert.Equal(t, want, isFingerprinted(name), name)
	}
}

func TestInjectReloadScript(t *testing.T) {
	assert.Equal(t,
		"<html><body>x"+reloadScript+"</body></html>",
		string(injectReloadScript([]byte("<html><body>x</body></html>"))))
	assert.Equal(t, "fragment"+reloadScript, string(injectReloadScript([]byte("fragment"))))

	index := []byte("<body></body>")
	injectReloadScript(index)
	assert.Equal(t, "<body></body>", string(index), "input is not modified")
}
