package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		client, err := New("openai", "sk-test", "gpt-4o")
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if _, ok := client.(*OpenAIClient); !ok {
			t.Errorf("expected *OpenAIClient, got %T", client)
		}
	})

	t.Run("unsupported provider", func(t *testing.T) {
		if _, err := New("mystery", "key", "model"); err == nil {
			t.Error("expected error for unsupported provider")
		}
	})
}

func TestOpenAIClient_CompleteJSON(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"success\": true}"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", "gpt-4o", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	messages := []Message{
		TextMessage("system", "identify the album"),
		{Role: "user", Parts: []Part{
			{Text: "What album is this?"},
			{ImageBase64: "aW1hZ2U="},
		}},
	}

	content, err := client.CompleteJSON(context.Background(), messages)
	if err != nil {
		t.Fatalf("CompleteJSON failed: %v", err)
	}
	if content != `{"success": true}` {
		t.Errorf("content = %q", content)
	}

	if captured["model"] != "gpt-4o" {
		t.Errorf("model = %v", captured["model"])
	}
	if rf, ok := captured["response_format"].(map[string]interface{}); !ok || rf["type"] != "json_object" {
		t.Errorf("response_format = %v", captured["response_format"])
	}

	msgs, ok := captured["messages"].([]interface{})
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %v", captured["messages"])
	}
	// System messages with a single text part collapse to string content.
	system := msgs[0].(map[string]interface{})
	if _, isString := system["content"].(string); !isString {
		t.Errorf("system content should be a string, got %T", system["content"])
	}
	// The user message carries a text part and an image data URL.
	user := msgs[1].(map[string]interface{})
	parts, ok := user["content"].([]interface{})
	if !ok || len(parts) != 2 {
		t.Fatalf("user content = %v", user["content"])
	}
	img := parts[1].(map[string]interface{})
	if img["type"] != "image_url" {
		t.Errorf("second part type = %v", img["type"])
	}
	imgURL := img["image_url"].(map[string]interface{})["url"].(string)
	if !strings.HasPrefix(imgURL, "data:image/jpeg;base64,") {
		t.Errorf("image url = %q", imgURL)
	}
}

func TestOpenAIClient_Errors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		client := NewOpenAIClient("", "gpt-4o")
		if _, err := client.CompleteJSON(context.Background(), []Message{TextMessage("user", "hi")}); err == nil {
			t.Error("expected error without api key")
		}
	})

	t.Run("http error surfaces body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
		}))
		defer srv.Close()

		client := NewOpenAIClient("sk-bad", "gpt-4o", WithBaseURL(srv.URL))
		_, err := client.CompleteJSON(context.Background(), []Message{TextMessage("user", "hi")})
		if err == nil || !strings.Contains(err.Error(), "401") {
			t.Errorf("expected http 401 error, got %v", err)
		}
	})

	t.Run("api error field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
		}))
		defer srv.Close()

		client := NewOpenAIClient("sk-test", "gpt-4o", WithBaseURL(srv.URL))
		_, err := client.CompleteJSON(context.Background(), []Message{TextMessage("user", "hi")})
		if err == nil || !strings.Contains(err.Error(), "model overloaded") {
			t.Errorf("expected api error, got %v", err)
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		client := NewOpenAIClient("sk-test", "gpt-4o", WithBaseURL(srv.URL))
		if _, err := client.CompleteJSON(context.Background(), []Message{TextMessage("user", "hi")}); err == nil {
			t.Error("expected error for empty choices")
		}
	})
}
