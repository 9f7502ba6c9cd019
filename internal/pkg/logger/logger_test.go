package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithDefaults(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewInvalidFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "xml"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestValidateFileOutputRequiresFilename(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "file"
	cfg.File.Filename = ""
	assert.Error(t, cfg.Validate())
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestWithContextDoesNotMutateBase(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req-456")
	child := log.WithContext(ctx)
	assert.NotNil(t, child)
	assert.Equal(t, log, log.WithContext(context.Background()))
}
