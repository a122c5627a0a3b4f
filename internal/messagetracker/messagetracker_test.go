package messagetracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStaleAfterThreshold(t *testing.T) {
	mt := New("binance", 10*time.Millisecond)
	assert.False(t, mt.Stale())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, mt.Stale())

	mt.RecordMessage()
	assert.False(t, mt.Stale())
}
