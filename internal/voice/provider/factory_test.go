package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	names := Names()

	assert.Len(t, names, 2)
	assert.Contains(t, names, "polly")
	assert.Contains(t, names, "gcp")
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("polly"))
	assert.True(t, IsSupported("gcp"))
	assert.False(t, IsSupported("elevenlabs"))
	assert.False(t, IsSupported(""))
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), "unknown", Config{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNew_Polly(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	p, err := New(context.Background(), "polly", Config{Region: "eu-central-1"})
	assert.NoError(t, err)
	if assert.NotNil(t, p) {
		assert.Equal(t, "polly", p.Name())
		assert.Equal(t, "eu-central-1", p.(*PollyProvider).region)
	}
}
