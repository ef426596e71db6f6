package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey(t *testing.T) {
	a, b := NewKey(".JPG"), NewKey(".jpg")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.True(t, ValidKey(a))
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"543896e2-7b7c-4fd8-bd08-9e96a9da6885.jpg", true},
		{"543896e2-7b7c-4fd8-bd08-9e96a9da6885.webp", true},
		{"543896e2-7b7c-4fd8-bd08-9e96a9da6885.exe", false},
		{"../543896e2-7b7c-4fd8-bd08-9e96a9da6885.jpg", false},
		{"543896e27b7c4fd8bd089e96a9da6885.jpg", false},
		{"poster.png", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidKey(tt.key), tt.key)
	}
}
