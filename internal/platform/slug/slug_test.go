package slug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"About Us":            "about-us",
		"  Crème Brûlée!  ":   "creme-brulee",
		"Q&A -- 2024":         "q-a-2024",
		"release_notes.v2":    "release_notes.v2",
		"???":                 "",
		"Ünïcödé Straße café": "unicode-straße-cafe",
	}
	for in, want := range cases {
		require.Equal(t, want, Make(in), "Make(%q)", in)
	}
}

func TestValid(t *testing.T) {
	require.True(t, Valid("about-us"))
	require.False(t, Valid(""))
	require.False(t, Valid("a/b"))
	require.False(t, Valid("has space"))
	require.False(t, Valid(".."))
}

func TestUnique(t *testing.T) {
	used := map[string]bool{"contact": true, "contact-1": true}
	got, err := Unique("contact", func(c string) (bool, error) { return used[c], nil })
	require.NoError(t, err)
	require.Equal(t, "contact-2", got)
}
