package src

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditBufferView(t *testing.T) {
	b := newEditBuffer("\tx\r\ny\x00\n")
	assert.Equal(t, "    x\ny\n", b.view)
}

func TestEditBufferApply(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		after string
		want  string
	}{
		{"append after tab", "\tfoo\n", "    foo\nX", "\tfoo\nX"},
		{"insert before tab", "\tfoo", "#    foo", "#\tfoo"},
		{"insert inside tab", "\tx", "  Y  x", "  Y  x"},
		{"delete whole tab", "\tx", "x", "x"},
		{"insert before crlf", "a\r\nb", "aX\nb", "aX\r\nb"},
		{"join crlf lines", "a\r\nb", "ab", "ab"},
		{"keep hidden control", "a\x00b", "ab!", "a\x00b!"},
		{"lone cr merge", "a\rb", "a\n\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newEditBuffer(tt.raw)
			assert.Equal(t, tt.want, b.apply(tt.after))
			assert.Equal(t, tt.after, b.view)
		})
	}
}

func TestEditBufferSequentialEdits(t *testing.T) {
	b := newEditBuffer("if x {\n\treturn\n}\n")
	b.apply("if x {\n    return nil\n}\n")
	got := b.apply("if x {\n    return nil\n}\n// done")
	assert.Equal(t, "if x {\n\treturn nil\n}\n// done", got)
}
