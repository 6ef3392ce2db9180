package ai

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

const samplePrompt = "Intro line\n\n" +
	PromptMetadataMarker + "\n" +
	`{"opportunity_name": "Acme Renewal", "account_name": "Acme", "call_date": "2025-02-03", "source": "zoom", "owner": "MQ", "stage": "", "filename": "acme.vtt"}` + "\n\n" +
	"Return JSON with this shape:\n{}\n\n" +
	PromptTranscriptMarker + "\n" +
	"Alice: Our main problem is slow dashboards.\n" +
	"Bob: We are evaluating a competitor product.\n" +
	"Alice: Budget approval is a risk this quarter.\n" +
	"Bob: Next step is a technical deep dive on Friday.\n" +
	"Alice: Who owns the security review?\n"

func TestMockGenerator_FullyPopulatedAndDeterministic(t *testing.T) {
	m := NewMockGenerator()

	first, err := m.Complete(context.Background(), samplePrompt)
	require.NoError(t, err)
	second, err := m.Complete(context.Background(), samplePrompt)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(first), &doc))

	for _, field := range []string{
		"opportunity_name", "account_name", "executive_summary", "opportunity_comments",
		"customer_pain", "use_cases", "stakeholders", "competitors_or_alternatives",
		"products_or_features_discussed", "risks_or_blockers", "next_steps", "open_questions",
		"confidence", "tags",
	} {
		v, ok := doc[field]
		require.True(t, ok, field)
		switch val := v.(type) {
		case string:
			assert.NotEmpty(t, val, field)
		case []interface{}:
			assert.NotEmpty(t, val, field)
		default:
			t.Fatalf("unexpected type for %s: %T", field, v)
		}
	}

	assert.Equal(t, "Acme Renewal", doc["opportunity_name"])
	assert.Equal(t, []interface{}{"Alice", "Bob"}, doc["stakeholders"])
	assert.Contains(t, doc["next_steps"], "Bob: Next step is a technical deep dive on Friday.")
	assert.Contains(t, doc["open_questions"], "Alice: Who owns the security review?")
	assert.True(t, strings.HasPrefix(doc["opportunity_comments"].(string), "* "))
}

func TestMockGenerator_EmptyTranscriptStillPopulated(t *testing.T) {
	out, err := NewMockGenerator().Complete(context.Background(), PromptTranscriptMarker+"\n")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.NotEmpty(t, doc["executive_summary"])
	assert.Equal(t, []interface{}{"Unknown speaker"}, doc["stakeholders"])
}

func TestNewTextGenerator(t *testing.T) {
	g, err := NewTextGenerator(&config.Config{LLM: config.LLMConfig{Backend: "mock"}})
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Name())

	g, err = NewTextGenerator(&config.Config{
		LLM:    config.LLMConfig{Backend: "openai"},
		OpenAI: config.OpenAIConfig{APIKey: "sk-test"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", g.Name())

	_, err = NewTextGenerator(&config.Config{LLM: config.LLMConfig{Backend: "openai"}})
	assert.Error(t, err)

	_, err = NewTextGenerator(&config.Config{LLM: config.LLMConfig{Backend: "palm"}})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestOpenAIClient_Complete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.2, req.Temperature, 0.0001)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "You output strict JSON only.", req.Messages[0].Content)
		assert.Equal(t, "hello", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"{\"executive_summary\":\"ok\"}"}}]}`)
	}))
	defer ts.Close()

	c := NewOpenAIClient(&config.OpenAIConfig{APIKey: "sk-test", BaseURL: ts.URL + "/"}, time.Second)
	out, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"executive_summary":"ok"}`, out)
}

func TestOpenAIClient_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"slow down"}`)
	}))
	defer ts.Close()

	c := NewOpenAIClient(&config.OpenAIConfig{APIKey: "k", BaseURL: ts.URL}, time.Second)
	_, err := c.Complete(context.Background(), "hello")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.RateLimited())
	assert.False(t, se.Unauthorized())
	assert.Contains(t, se.Error(), "slow down")
}

func TestCortexClient_Complete(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "KEYPAIR_JWT", r.Header.Get("X-Snowflake-Authorization-Token-Type"))

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil })
		assert.NoError(t, err)
		assert.Equal(t, "MYORG-ACCT1.SVC_USER", claims.Subject)
		assert.True(t, strings.HasPrefix(claims.Issuer, "MYORG-ACCT1.SVC_USER.SHA256:"))

		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			assert.Equal(t, "/api/v2/statements", r.URL.Path)
			var body statementRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, cortexStatement, body.Statement)
			assert.Equal(t, "llama3.1-70b", body.Bindings["1"].Value)
			assert.Equal(t, "the prompt", body.Bindings["2"].Value)
			assert.Equal(t, "COMPUTE_WH", body.Warehouse)

			w.WriteHeader(http.StatusAccepted)
			_, _ = io.WriteString(w, `{"code":"333334","statementHandle":"h1","statementStatusUrl":"/api/v2/statements/h1"}`)
			return
		}
		assert.Equal(t, "/api/v2/statements/h1", r.URL.Path)
		_, _ = io.WriteString(w, `{"code":"090001","statementHandle":"h1","data":[["{\"confidence\":\"high\"}"]]}`)
	}))
	defer ts.Close()

	c := NewCortexClientWithKey(&config.SnowflakeConfig{
		Account:   "myorg-acct1",
		User:      "svc_user",
		Warehouse: "COMPUTE_WH",
		BaseURL:   ts.URL,
	}, key, 5*time.Second)

	out, err := c.Complete(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"confidence":"high"}`, out)
	assert.Equal(t, "cortex:llama3.1-70b", c.Name())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCortexClient_EmptyResult(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":"090001","data":[[null]]}`)
	}))
	defer ts.Close()

	c := NewCortexClientWithKey(&config.SnowflakeConfig{Account: "a", User: "u", BaseURL: ts.URL}, key, time.Second)
	_, err = c.Complete(context.Background(), "p")
	assert.EqualError(t, err, "cortex returned empty response")
}

func TestCortexClient_ReusesToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	c := NewCortexClientWithKey(&config.SnowflakeConfig{Account: "a", User: "u"}, key, time.Second)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	t1, err := c.bearerToken()
	require.NoError(t, err)
	t2, err := c.bearerToken()
	require.NoError(t, err)
	assert.Equal(t, t1, t2)

	now = now.Add(time.Hour)
	t3, err := c.bearerToken()
	require.NoError(t, err)
	assert.NotEqual(t, t1, t3)
}

func TestWhisperTranscriber(t *testing.T) {
	w := NewWhisperTranscriber(&config.OpenAIConfig{APIKey: "sk"}, "en")
	httpmock.ActivateNonDefault(w.client)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPost, "https://api.openai.com/v1/audio/transcriptions",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, req.ParseMultipartForm(1<<20))
			assert.Equal(t, "whisper-1", req.FormValue("model"))
			assert.Equal(t, "en", req.FormValue("language"))
			_, header, err := req.FormFile("file")
			require.NoError(t, err)
			assert.Equal(t, "call.mp3", header.Filename)
			return httpmock.NewStringResponse(http.StatusOK, `{"text":"  hello there  "}`), nil
		})

	out, err := w.Transcribe(context.Background(), "/tmp/call.mp3", strings.NewReader("RIFF"))
	require.NoError(t, err)
	assert.Equal(t, "hello there", out.Text)
	assert.Equal(t, "whisper-1", out.Model)
}

func TestNewTranscriber(t *testing.T) {
	tr, err := NewTranscriber(&config.Config{Transcription: config.TranscriptionConfig{Backend: "none"}})
	require.NoError(t, err)
	_, err = tr.Transcribe(context.Background(), "a.mp3", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrTranscriptionDisabled)

	_, err = NewTranscriber(&config.Config{Transcription: config.TranscriptionConfig{Backend: "assemblyai"}})
	assert.Error(t, err)

	tr, err = NewTranscriber(&config.Config{
		Transcription: config.TranscriptionConfig{Backend: "assemblyai"},
		Assembly:      config.AssemblyAIConfig{APIKey: "k"},
	})
	require.NoError(t, err)
	assert.Equal(t, "assemblyai", tr.Name())

	_, err = NewTranscriber(&config.Config{Transcription: config.TranscriptionConfig{Backend: "dragon"}})
	assert.Error(t, err)
}
