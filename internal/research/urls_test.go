package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAmazonURL(t *testing.T) {
	assert.True(t, IsAmazonURL("https://www.amazon.com/dp/B07XYZ"))
	assert.True(t, IsAmazonURL("https://amazon.co.uk/gp/product/123"))
	assert.True(t, IsAmazonURL("https://smile.amazon.de/dp/B000"))
	assert.True(t, IsAmazonURL("https://m.amazon.com.au/dp/B000"))
	assert.True(t, IsAmazonURL("https://www.amazon.com:443/dp/B07XYZ"))
	assert.True(t, IsAmazonURL("www.amazon.com/dp/B07XYZ"))
	assert.True(t, IsAmazonURL("HTTPS://WWW.AMAZON.COM/DP/B07XYZ"))
}

func TestIsAmazonURL_Negative(t *testing.T) {
	assert.False(t, IsAmazonURL(""))
	assert.False(t, IsAmazonURL("https://www.walmart.com/ip/123"))
	// Lookalike hosts must not match.
	assert.False(t, IsAmazonURL("https://amazon.com.evil.test/dp/B07XYZ"))
	assert.False(t, IsAmazonURL("https://notamazon.com/dp/B07XYZ"))
	assert.False(t, IsAmazonURL("https://amazonia.com/product"))
}

func TestPartitionURLs(t *testing.T) {
	urls := []string{
		"https://www.walmart.com/ip/1",
		"https://www.amazon.com/dp/B1",
		"https://shop.test/p/2",
		"https://amazon.co.jp/dp/B2",
	}
	amazon, other := PartitionURLs(urls)
	assert.Equal(t, []string{"https://www.amazon.com/dp/B1", "https://amazon.co.jp/dp/B2"}, amazon)
	assert.Equal(t, []string{"https://www.walmart.com/ip/1", "https://shop.test/p/2"}, other)
}
