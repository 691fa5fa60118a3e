package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-a-slug", "already-a-slug"},
		{"Multiple   spaces --- and dashes", "multiple-spaces-and-dashes"},
		{"CAPS and 123 numbers", "caps-and-123-numbers"},
		{"!!!", "untitled"},
		{"", "untitled"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Make(tt.in), "Make(%q)", tt.in)
	}
}

func TestUniqueFirstFree(t *testing.T) {
	got, err := Unique("my-post", func(string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "my-post", got)
}

func TestUniqueNumbersOnCollision(t *testing.T) {
	taken := map[string]bool{"my-post": true, "my-post-2": true}
	got, err := Unique("my-post", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "my-post-3", got)
}

func TestUniqueFallsBackToRandomSuffix(t *testing.T) {
	got, err := Unique("my-post", func(string) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.NotEqual(t, "my-post", got)
	assert.Regexp(t, `^my-post-[0-9a-f]{8}$`, got)
}
