package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearConfigEnv blanks the bound environment variables so tests asserting
// defaults are not affected by the host environment. Viper ignores empty
// env values, so blanking behaves like unsetting.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"HOST", "PORT", "AWS_REGION", "KNOWLEDGE_BASE_ID", "MODEL_ARN"} {
		t.Setenv(env, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 8000, config.Server.Port)
	assert.Equal(t, "us-west-2", config.AWS.Region)
	assert.Equal(t, "", config.AWS.KnowledgeBaseID)
	assert.Equal(t, []string{"*"}, config.CORS.AllowOrigins)
	assert.Equal(t, "info", config.Log.Level)
}

func TestLoadConfigModelARNInterpolation(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	// No MODEL_ARN configured: the default is built from the region.
	assert.Equal(t,
		"arn:aws:bedrock:us-west-2::foundation-model/anthropic.claude-3-sonnet-20240229-v1:0",
		config.AWS.ModelARN)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("KNOWLEDGE_BASE_ID", "KB12345678")
	t.Setenv("PORT", "9000")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", config.AWS.Region)
	assert.Equal(t, "KB12345678", config.AWS.KnowledgeBaseID)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Contains(t, config.AWS.ModelARN, "arn:aws:bedrock:eu-central-1:")
}

func TestLoadConfigExplicitModelARN(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MODEL_ARN", "arn:aws:bedrock:us-east-1::foundation-model/anthropic.claude-3-haiku-20240307-v1:0")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t,
		"arn:aws:bedrock:us-east-1::foundation-model/anthropic.claude-3-haiku-20240307-v1:0",
		config.AWS.ModelARN)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestServerAddr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8000}
	assert.Equal(t, "127.0.0.1:8000", c.Addr())
}
