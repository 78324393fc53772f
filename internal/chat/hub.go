package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zerobin/client/internal/api"
	"zerobin/client/internal/models"
)

// Hub hands out one polling Channel per chat id and tears them down on
// unmount or shutdown.
type Hub struct {
	client   *api.Client
	tokens   TokenSource
	interval time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	channels map[string]*Channel
}

func NewHub(client *api.Client, tokens TokenSource, interval time.Duration, logger zerolog.Logger) *Hub {
	return &Hub{
		client:   client,
		tokens:   tokens,
		interval: interval,
		log:      logger,
		channels: make(map[string]*Channel),
	}
}

// Open returns the running channel for a chat, starting one if needed.
func (h *Hub) Open(chatID string) *Channel {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.channels[chatID]; ok {
		return ch
	}

	ch := NewChannel(h.client, h.tokens, chatID, h.interval, h.log)
	h.channels[chatID] = ch
	ch.Start()
	return ch
}

// Close unmounts one channel.
func (h *Hub) Close(chatID string) {
	h.mu.Lock()
	ch, ok := h.channels[chatID]
	delete(h.channels, chatID)
	h.mu.Unlock()

	if ok {
		ch.Stop()
	}
}

// Shutdown stops every channel.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	channels := h.channels
	h.channels = make(map[string]*Channel)
	h.mu.Unlock()

	for _, ch := range channels {
		ch.Stop()
	}
}

// FindOrCreateForListing resolves the chat attached to a listing. A 404 on
// the lookup means "no chat yet": it falls through to creation rather than
// failing. Every other error is terminal.
func (h *Hub) FindOrCreateForListing(ctx context.Context, listingID string) (models.Chat, error) {
	token := h.tokens.Token()

	found, err := api.Do[models.Chat](ctx, h.client, "/chats/listing/"+listingID, api.Options{
		Auth:  true,
		Token: token,
	})
	if err == nil {
		return found, nil
	}
	if !api.IsNotFound(err) {
		return models.Chat{}, err
	}

	return api.Do[models.Chat](ctx, h.client, "/chats", api.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"listing_id": listingID},
		Auth:   true,
		Token:  token,
	})
}
