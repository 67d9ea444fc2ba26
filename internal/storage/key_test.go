package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniqueKeyShape(t *testing.T) {
	key := UniqueKey("user-1", "ear.png")
	require.True(t, strings.HasPrefix(key, "uploads/user-1/"))
	require.True(t, strings.HasSuffix(key, ".png"))
}

func TestUniqueKeyNoExtension(t *testing.T) {
	key := UniqueKey("user-1", "photo")
	require.True(t, strings.HasPrefix(key, "uploads/user-1/"))
	require.False(t, strings.Contains(key, "."))
}

func TestUniqueKeyNeverCollides(t *testing.T) {
	a := UniqueKey("user-1", "ear.png")
	b := UniqueKey("user-1", "ear.png")
	require.NotEqual(t, a, b)
}

func TestKeyFromURL(t *testing.T) {
	key, err := KeyFromURL("earlog", "https://fra1.digitaloceanspaces.com/earlog/uploads/u1/123-abc.png")
	require.NoError(t, err)
	require.Equal(t, "uploads/u1/123-abc.png", key)
}

func TestKeyFromURLWrongBucket(t *testing.T) {
	_, err := KeyFromURL("earlog", "https://fra1.digitaloceanspaces.com/other/uploads/u1/123-abc.png")
	require.Error(t, err)
}

func TestKeyFromURLNoKey(t *testing.T) {
	_, err := KeyFromURL("earlog", "https://fra1.digitaloceanspaces.com/earlog")
	require.Error(t, err)

	_, err = KeyFromURL("earlog", "https://fra1.digitaloceanspaces.com/earlog/")
	require.Error(t, err)
}
