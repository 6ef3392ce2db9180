package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("LLM_BACKEND", "")
	t.Setenv("RUN_STORE", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendMock, cfg.LLM.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.True(t, cfg.Salesforce.AppendMode)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_BackendAliases(t *testing.T) {
	for _, alias := range []string{"cortex", "Snowflake", " snowflake_cortex "} {
		t.Setenv("LLM_BACKEND", alias)
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, BackendCortex, cfg.LLM.Backend, alias)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"openai without key", func(c *Config) { c.LLM.Backend = BackendOpenAI }, "OPENAI_API_KEY"},
		{"openai with key", func(c *Config) { c.LLM.Backend = BackendOpenAI; c.OpenAI.APIKey = "sk" }, ""},
		{"cortex without account", func(c *Config) { c.LLM.Backend = BackendCortex }, "SNOWFLAKE_ACCOUNT"},
		{"unknown backend", func(c *Config) { c.LLM.Backend = "bard" }, "unknown LLM_BACKEND"},
		{"unknown store", func(c *Config) { c.RunStore.Driver = "mongo" }, "unknown RUN_STORE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LLM:           LLMConfig{Backend: BackendMock},
				Transcription: TranscriptionConfig{Backend: TranscribeNone},
				RunStore:      RunStoreConfig{Driver: StoreFile},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSalesforceValidate(t *testing.T) {
	s := SalesforceConfig{Username: "u", ClientID: "id", Password: "p"}
	assert.Error(t, s.Validate())

	s.ObjectAPIName = "Solution_Assessment__c"
	s.LookupField = "Opportunity__c"
	s.CommentsField = "Opportunity_Comments__c"
	assert.NoError(t, s.Validate())

	s.Password = ""
	assert.Error(t, s.Validate())
}
