package tracked_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evvaletov/tracked"
)

func TestKeyError_Format(t *testing.T) {
	err := &tracked.KeyError{Key: "host"}
	assert.Equal(t, `tracked: missing key "host"`, err.Error())

	err = &tracked.KeyError{Path: "server.tls", Key: "cert"}
	assert.Equal(t, `tracked: missing key "cert" at server.tls`, err.Error())
	assert.True(t, errors.Is(err, tracked.ErrMissingKey))
}

func TestIndexError_Format(t *testing.T) {
	err := &tracked.IndexError{Index: 5, Len: 2}
	assert.Equal(t, "tracked: index out of range [5] with length 2", err.Error())

	err = &tracked.IndexError{Path: "plugins", Index: -1, Len: 2}
	assert.Equal(t, "tracked: index out of range [-1] with length 2 at plugins", err.Error())
	assert.True(t, errors.Is(err, tracked.ErrIndexOutOfRange))
}

func TestSentinels_Distinct(t *testing.T) {
	assert.False(t, errors.Is(tracked.ErrMissingKey, tracked.ErrIndexOutOfRange))
	assert.False(t, errors.Is(&tracked.KeyError{Key: "k"}, tracked.ErrIndexOutOfRange))
	assert.False(t, errors.Is(&tracked.IndexError{}, tracked.ErrMissingKey))
}
