package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrettyDuration(t *testing.T) {
	assert.Equal(t, "1.234s", PrettyDuration(1234567890*time.Nanosecond).String())
	assert.Equal(t, "2m0s", PrettyDuration(2*time.Minute).String())
}

func TestPrettyAge(t *testing.T) {
	assert.Equal(t, "0", PrettyAge(time.Now()).String())
	age := PrettyAge(time.Now().Add(-(26*time.Hour + 3*time.Minute + 5*time.Second))).String()
	assert.Equal(t, "1d2h3m", age)
}

func TestStorageSize(t *testing.T) {
	assert.Equal(t, "512.00 B", StorageSize(512).String())
	assert.Equal(t, "1.50 KiB", StorageSize(1536).String())
	assert.Equal(t, "20.00 MiB", StorageSize(20*1024*1024).String())
}
