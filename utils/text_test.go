package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims lines", "  NLP算法工程师  \n   北京·海淀区  ", "NLP算法工程师\n北京·海淀区"},
		{"drops blank lines", "全职\n\n   \n本科", "全职\n本科"},
		{"single value", "  25-50K  ", "25-50K"},
		{"empty", "   \n  ", ""},
		{"nfc normalization", "e\u0301", "\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestFirstAndLastLine(t *testing.T) {
	s := "NLP算法工程师\n北京·海淀区"
	assert.Equal(t, "NLP算法工程师", FirstLine(s))
	assert.Equal(t, "北京·海淀区", LastLine(s))

	single := "25-50K"
	assert.Equal(t, single, FirstLine(single))
	assert.Equal(t, single, LastLine(single))
}
