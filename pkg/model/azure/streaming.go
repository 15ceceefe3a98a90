package azure

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	modelpkg "github.com/cexll/llmadapter-go/pkg/model"
)

// ChatCompletionStream invokes the streaming endpoint and relays partial
// chunks through cb. The final callback carries the accumulated message.
func (m *Model) ChatCompletionStream(ctx context.Context, messages []modelpkg.Message, cb modelpkg.StreamCallback, opts ...modelpkg.CallOption) error {
	if cb == nil {
		return errors.New("stream callback is required")
	}

	payload := m.buildPayload(messages, modelpkg.ApplyCallOptions(opts), true)
	resp, err := m.doRequest(ctx, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return readAPIError(resp)
	}

	stream := newChunkStream(cb)
	if err := stream.consume(ctx, resp.Body); err != nil {
		return err
	}
	return stream.finalize()
}

type chunkStream struct {
	cb          modelpkg.StreamCallback
	accumulator strings.Builder
	role        string
	finished    bool
}

func newChunkStream(cb modelpkg.StreamCallback) *chunkStream {
	return &chunkStream{cb: cb}
}

func (s *chunkStream) consume(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialStreamBufSize), maxStreamLineBytes)
	var dataBuf strings.Builder
	flush := func() error {
		if dataBuf.Len() == 0 {
			return nil
		}
		payload := strings.TrimSpace(dataBuf.String())
		dataBuf.Reset()
		if payload == "" {
			return nil
		}
		if payload == "[DONE]" {
			s.finished = true
			return io.EOF
		}
		var chunk ChatCompletionStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		return s.processChunk(chunk)
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := scanner.Text()
		if line == "" {
			if err := flush(); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimSpace(line[5:]))
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if err := flush(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *chunkStream) processChunk(chunk ChatCompletionStreamChunk) error {
	if len(chunk.Choices) == 0 {
		return nil
	}
	for _, choice := range chunk.Choices {
		if choice.Delta.Role != "" {
			s.role = choice.Delta.Role
		}
		if text := choice.Delta.Content.Text(); text != "" {
			s.accumulator.WriteString(text)
			if err := s.cb(modelpkg.StreamResult{
				Message: modelpkg.Message{Role: currentRole(s.role), Content: text},
			}); err != nil {
				return err
			}
		}
		if choice.FinishReason == "stop" {
			s.finished = true
		}
	}
	return nil
}

func (s *chunkStream) finalize() error {
	return s.cb(modelpkg.StreamResult{
		Message: modelpkg.Message{
			Role:    currentRole(s.role),
			Content: s.accumulator.String(),
		},
		Final: true,
	})
}

func currentRole(role string) string {
	if role == "" {
		return modelpkg.RoleAssistant
	}
	return role
}
