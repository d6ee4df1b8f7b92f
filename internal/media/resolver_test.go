package media

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHostedResolverJoinsRelativePaths(t *testing.T) {
	resolver, err := NewHostedResolver("https://cdn.example.com/media/")
	require.NoError(t, err)

	resolved, err := resolver.Resolve("products/kettle.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/media/products/kettle.jpg", resolved)

	resolved, err = resolver.Resolve("/banners/sale.png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/banners/sale.png", resolved)
}

func TestHostedResolverPassesThroughAbsoluteURLs(t *testing.T) {
	resolver, err := NewHostedResolver("https://cdn.example.com")
	require.NoError(t, err)

	resolved, err := resolver.Resolve("https://images.example.org/a.jpg")
	require.NoError(t, err)
	require.Equal(t, "https://images.example.org/a.jpg", resolved)
}

func TestHostedResolverRejectsBadReferences(t *testing.T) {
	resolver, err := NewHostedResolver("https://cdn.example.com")
	require.NoError(t, err)

	_, err = resolver.Resolve("")
	require.Error(t, err)

	_, err = resolver.Resolve("ftp://host/file.jpg")
	require.Error(t, err)

	bare, err := NewHostedResolver("")
	require.NoError(t, err)
	_, err = bare.Resolve("products/kettle.jpg")
	require.Error(t, err)
}

func TestNewHostedResolverValidatesBase(t *testing.T) {
	_, err := NewHostedResolver("ftp://cdn.example.com")
	require.Error(t, err)
}
