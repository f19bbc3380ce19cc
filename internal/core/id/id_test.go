package id

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_IsUUID(t *testing.T) {
	assert.True(t, IsUUID(New()))
	assert.False(t, IsUUID("ACM-MOB-SMA-0001"))
}

func TestBusinessKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.Regexp(t, regexp.MustCompile(`^DLR-20240501-[0-9A-F]{6}$`), Dealer(now))
	assert.Regexp(t, regexp.MustCompile(`^PUR-20240501-[0-9A-F]{6}$`), Purchase(now))
	assert.NotEqual(t, Purchase(now), Purchase(now))
}
