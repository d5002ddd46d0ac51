package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.TopicModel)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.SummaryModel)
	assert.Equal(t, "https://en.wikipedia.org/w/api.php", cfg.Wiki.APIURL)
	assert.Equal(t, "fuzzy", cfg.Ranking.Strategy)
	assert.Equal(t, 8, cfg.Fetch.Workers)
	assert.Empty(t, cfg.Staging.Bucket)
}

func TestLoadMergesYAMLOverDefaults(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
openai:
  topicModel: gpt-4o-mini
wiki:
  timeoutSeconds: 3
ranking:
  strategy: oracle
`), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.TopicModel)
	assert.Equal(t, 3*time.Second, cfg.Wiki.Timeout())
	assert.Equal(t, "oracle", cfg.Ranking.Strategy)
	// Untouched fields keep their defaults.
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.SummaryModel)
	assert.Equal(t, 300, cfg.OpenAI.SummaryMaxTokens)
}

func TestLoadEnvOverridesWinOverYAML(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
staging:
  bucket: yaml-bucket
`), 0o600))
	t.Setenv(configPathEnv, path)
	t.Setenv(serverAddrEnv, ":7070")
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(stagingBucketEnv, "env-bucket")
	t.Setenv(rankingStrategyEnv, "oracle")

	cfg := Load()

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "env-bucket", cfg.Staging.Bucket)
	assert.Equal(t, "oracle", cfg.Ranking.Strategy)
}

func TestLoadUnreadableFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestTimeoutFallbacks(t *testing.T) {
	assert.Equal(t, 30*time.Second, OpenAIConfig{}.Timeout())
	assert.Equal(t, 15*time.Second, WikiConfig{}.Timeout())
	assert.Equal(t, 7*time.Second, OpenAIConfig{TimeoutSeconds: 7}.Timeout())
}

// clearConfigEnv shields tests from configuration in the developer's shell.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, serverAddrEnv, openAIAPIKeyEnv, openAIEndpointEnv,
		wikiAPIURLEnv, stagingBucketEnv, stagingRegionEnv, rankingStrategyEnv,
	} {
		t.Setenv(key, "")
	}
}
