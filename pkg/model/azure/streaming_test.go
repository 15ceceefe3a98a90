package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

func streamHandler(t *testing.T, payloads []string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode stream request: %v", err)
		}
		if stream, _ := req["stream"].(bool); !stream {
			t.Error("expected stream flag")
		}
		flusher, _ := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range payloads {
			if _, err := w.Write([]byte("data: " + chunk + "\n\n")); err != nil {
				t.Errorf("write chunk: %v", err)
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if _, err := w.Write([]byte("data: [DONE]\n\n")); err != nil {
			t.Errorf("write done: %v", err)
		}
		if flusher != nil {
			flusher.Flush()
		}
	})
}

func TestChatCompletionStream(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(streamHandler(t, []string{
		`{"choices":[{"delta":{"role":"assistant","content":"Par"},"finish_reason":null}]}`,
		`{"choices":[{"delta":{"content":"is."},"finish_reason":"stop"}]}`,
	}))
	defer server.Close()

	m := newServerModel(t, server, nil)
	var chunks []string
	var final modelpkg.Message
	err := m.ChatCompletionStream(context.Background(), []modelpkg.Message{
		{Role: "user", Content: "capital of France?"},
	}, func(res modelpkg.StreamResult) error {
		if res.Final {
			final = res.Message
			return nil
		}
		if res.Message.Content != "" {
			chunks = append(chunks, res.Message.Content)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ChatCompletionStream error: %v", err)
	}
	if final.Content != "Paris." || final.Role != "assistant" {
		t.Fatalf("final message: %+v", final)
	}
	if got := strings.Join(chunks, ""); got != "Paris." {
		t.Fatalf("chunks mismatch: %q", got)
	}
}

func TestChatCompletionStreamArrayContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(streamHandler(t, []string{
		`{"choices":[{"delta":{"role":"assistant","content":[{"type":"text","text":"Hel"}]},"finish_reason":null}]}`,
		`{"choices":[{"delta":{"content":[{"type":"text","text":"lo"}]},"finish_reason":"stop"}]}`,
	}))
	defer server.Close()

	m := newServerModel(t, server, nil)
	var final modelpkg.Message
	err := m.ChatCompletionStream(context.Background(), []modelpkg.Message{
		{Role: "user", Content: "hi"},
	}, func(res modelpkg.StreamResult) error {
		if res.Final {
			final = res.Message
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ChatCompletionStream error: %v", err)
	}
	if final.Content != "Hello" {
		t.Fatalf("final message: %+v", final)
	}
}

func TestChatCompletionStreamRequiresCallback(t *testing.T) {
	t.Parallel()

	m, err := NewModel(Config{LookupEnv: fakeEnv(fullEnv())})
	if err != nil {
		t.Fatalf("NewModel error: %v", err)
	}
	if err := m.ChatCompletionStream(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}
