package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/comment"
)

// streamEvents отдает изменения комментариев поста как text/event-stream
func (h *handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	if _, err := h.posts.GetPostById(postID); err != nil {
		h.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, r, fmt.Errorf("streaming unsupported"))
		return
	}

	events, cancel := h.events.Subscribe(postID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("failed to encode event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		}
	}
}

// Subscribe читает поток событий поста. Канал закрывается,
// когда сервер рвет соединение или отменяется ctx.
func (c *Client) Subscribe(ctx context.Context, postID string) (<-chan comment.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+postPath(postID)+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// у потока нет общего таймаута, только ctx
	stream := &http.Client{Transport: c.http.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribe to post %s: %w", postID, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	events := make(chan comment.Event)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}
			var ev comment.Event
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
