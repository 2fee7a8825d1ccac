package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "UTF-8"},
		{"UTF-8", "UTF-8"},
		{"utf-8", "UTF-8"},
		{"utf8", "UTF-8"},
		{"ISO-8859-1", "ISO-8859-1"},
		{"latin1", "ISO-8859-1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cs, err := Lookup(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.want, cs.Name)
		})
	}
}

func TestLookup_Unsupported(t *testing.T) {
	_, err := Lookup("klingon-42")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "klingon-42")
}

func TestDecode_Latin1(t *testing.T) {
	cs, err := Lookup("ISO-8859-1")
	require.NoError(t, err)

	text, err := cs.Decode([]byte{'c', 'a', 'f', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "café\n", text)
}

func TestDecode_NormalizesLines(t *testing.T) {
	cs, err := Lookup("UTF-8")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "a\n"},
		{"a\n", "a\n"},
		{"a\r\nb\r\n", "a\nb\n"},
		{"a\rb", "a\nb\n"},
		{"\n\n", "\n\n"},
	}
	for _, tc := range tests {
		got, err := cs.Decode([]byte(tc.in))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
