package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAddresses(t *testing.T) {
	assert.Nil(t, splitAddresses(""))
	assert.Equal(t, []string{"localhost:6379"}, splitAddresses("localhost:6379"))
	assert.Equal(t,
		[]string{"redis1:6379", "redis2:6379", "redis3:6379"},
		splitAddresses("redis1:6379, redis2:6379 ,redis3:6379"))
	assert.Equal(t, []string{"redis1:6379"}, splitAddresses("redis1:6379,,"))
}

func TestIsAvailableWithoutClient(t *testing.T) {
	assert.False(t, IsAvailable(), "no configured client means no rate limiting")
}
