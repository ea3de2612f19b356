package api

import (
	"net/url"
	"reflect"
	"testing"
)

func TestNormalizeMediaURLs(t *testing.T) {
	base, _ := url.Parse("http://127.0.0.1:8000")

	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "relative logo",
			in:   map[string]any{"logo": "media/arri.png"},
			want: map[string]any{"logo": "http://127.0.0.1:8000/media/arri.png"},
		},
		{
			name: "leading slash",
			in:   map[string]any{"image": "/media/alexa.jpg"},
			want: map[string]any{"image": "http://127.0.0.1:8000/media/alexa.jpg"},
		},
		{
			name: "already absolute",
			in:   map[string]any{"logo": "https://cdn.example.com/arri.png"},
			want: map[string]any{"logo": "https://cdn.example.com/arri.png"},
		},
		{
			name: "non-media fields untouched",
			in:   map[string]any{"name": "media/arri.png"},
			want: map[string]any{"name": "media/arri.png"},
		},
		{
			name: "nested in list",
			in: map[string]any{
				"cameras": []any{map[string]any{"image": "media/cam.jpg"}},
			},
			want: map[string]any{
				"cameras": []any{map[string]any{"image": "http://127.0.0.1:8000/media/cam.jpg"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalizeMediaURLs(tt.in, base)
			if !reflect.DeepEqual(tt.in, tt.want) {
				t.Errorf("got %#v, want %#v", tt.in, tt.want)
			}
		})
	}
}

func TestNormalizeMediaURLsIdempotent(t *testing.T) {
	base, _ := url.Parse("http://127.0.0.1:8000")
	in := map[string]any{"logo": "media/arri.png"}

	normalizeMediaURLs(in, base)
	first := in["logo"]
	normalizeMediaURLs(in, base)

	if in["logo"] != first {
		t.Errorf("normalizing twice changed the value: %v != %v", in["logo"], first)
	}
}
