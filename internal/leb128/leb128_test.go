package leb128

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUvarint(t *testing.T) {
	cases := []struct {
		data     []byte
		value    uint64
		consumed int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x01}, 1, 1},
		{[]byte{0x7f}, 127, 1},
		{[]byte{0x80, 0x01}, 128, 2},
		{[]byte{0xe5, 0x8e, 0x26}, 624485, 3},
	}
	for _, c := range cases {
		v, n, err := ReadUvarint(c.data, 0)
		require.NoError(t, err)
		assert.Equal(t, c.value, v)
		assert.Equal(t, c.consumed, n)
	}
}

func TestReadVarint(t *testing.T) {
	cases := []struct {
		data     []byte
		value    int64
		consumed int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x7f}, -1, 1},
		{[]byte{0x80, 0x7f}, -128, 2},
	}
	for _, c := range cases {
		v, n, err := ReadVarint(c.data, 0)
		require.NoError(t, err)
		assert.Equal(t, c.value, v)
		assert.Equal(t, c.consumed, n)
	}
}

func TestReadUvarintTruncated(t *testing.T) {
	_, _, err := ReadUvarint([]byte{0x80}, 0)
	assert.Error(t, err)
}
