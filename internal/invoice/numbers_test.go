package invoice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStubNumberPart(t *testing.T) {
	require.Equal(t, int64(1050), StubNumberPart("101-1050"))
	require.Equal(t, int64(1050), StubNumberPart("1050"))
	require.Equal(t, int64(0), StubNumberPart(""))
	require.Equal(t, int64(0), StubNumberPart("legacy"))
	require.Equal(t, int64(77), StubNumberPart("A-1-77"))
}
