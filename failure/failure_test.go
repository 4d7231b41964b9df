package failure

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceFailureHidesCause(t *testing.T) {
	cause := &fs.PathError{Op: "dial", Path: "api", Err: errors.New("connection refused")}
	err := NewServiceFailure(KindNetwork, MsgServiceCommunication, cause)

	assert.Equal(t, MsgServiceCommunication, err.Error())
	assert.ErrorIs(t, err, ErrService)
	assert.Same(t, cause, err.Cause())

	var pathErr *fs.PathError
	assert.False(t, errors.As(err, &pathErr), "cause must not be reachable through unwrapping")
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
}

func TestIOFailureUnwraps(t *testing.T) {
	err := &IOFailure{Path: "/nope/out.go", Err: fs.ErrPermission}
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "/nope/out.go")
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Key: "GPT_API_KEY"}
	assert.Equal(t, `Environment variable "GPT_API_KEY" is not defined`, err.Error())

	err = &ConfigurationError{Key: "GPT_REQUESTS_PER_MINUTE", Reason: "must be a non-negative integer"}
	assert.Equal(t, `Environment variable "GPT_REQUESTS_PER_MINUTE" is invalid: must be a non-negative integer`, err.Error())
}
