package chat

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zerobin/client/internal/api"
	"zerobin/client/internal/models"
)

// ErrChannelLocked is returned by Send before any network call is made.
var ErrChannelLocked = errors.New("chat: channel is locked")

// ErrChannelClosed likewise; closed is terminal.
var ErrChannelClosed = errors.New("chat: channel is closed")

// TokenSource supplies the current bearer token. The session manager is the
// one implementation.
type TokenSource interface {
	Token() string
}

// Channel maintains a near-real-time view of one conversation by polling.
// Each tick fetches the message list and the lock status concurrently,
// joins them, and applies both in one step. The cached list is replaced
// wholesale; there is no merging.
type Channel struct {
	chatID   string
	client   *api.Client
	tokens   TokenSource
	interval time.Duration
	log      zerolog.Logger

	mu       sync.Mutex
	messages []models.Message
	status   models.ChatStatus
	stopped  bool
	stop     chan struct{}
	done     chan struct{}
}

func NewChannel(client *api.Client, tokens TokenSource, chatID string, interval time.Duration, logger zerolog.Logger) *Channel {
	return &Channel{
		chatID:   chatID,
		client:   client,
		tokens:   tokens,
		interval: interval,
		log:      logger.With().Str("chat_id", chatID).Logger(),
		status:   models.ChatStatusUnlocked,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling: one immediate refresh, then one per interval.
func (ch *Channel) Start() {
	go func() {
		defer close(ch.done)

		ch.Refresh(context.Background())

		ticker := time.NewTicker(ch.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ch.Refresh(context.Background())
			case <-ch.stop:
				return
			}
		}
	}()
}

// Stop tears the poll loop down. An in-flight refresh is not cancelled, but
// its result will be discarded when it lands.
func (ch *Channel) Stop() {
	ch.mu.Lock()
	if ch.stopped {
		ch.mu.Unlock()
		return
	}
	ch.stopped = true
	ch.mu.Unlock()

	close(ch.stop)
	<-ch.done
}

// Snapshot returns the cached message list and status.
func (ch *Channel) Snapshot() ([]models.Message, models.ChatStatus) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	out := make([]models.Message, len(ch.messages))
	copy(out, ch.messages)
	return out, ch.status
}

// Refresh runs one poll tick. Failures are logged and ignored: the previous
// cached state stays and the next tick retries. No backoff.
func (ch *Channel) Refresh(ctx context.Context) {
	token := ch.tokens.Token()

	var (
		wg        sync.WaitGroup
		messages  []models.Message
		chatInfo  models.Chat
		msgErr    error
		statusErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		messages, msgErr = api.Do[[]models.Message](ctx, ch.client, "/chats/"+ch.chatID+"/messages", api.Options{
			Auth:  true,
			Token: token,
		})
	}()
	go func() {
		defer wg.Done()
		chatInfo, statusErr = api.Do[models.Chat](ctx, ch.client, "/chats/"+ch.chatID, api.Options{
			Auth:  true,
			Token: token,
		})
	}()
	wg.Wait()

	if msgErr != nil || statusErr != nil {
		ch.log.Debug().
			AnErr("messages", msgErr).
			AnErr("status", statusErr).
			Msg("poll tick failed")
		return
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	// A slow response landing after Stop must not resurrect state.
	if ch.stopped {
		return
	}

	ch.messages = messages
	ch.status = models.ParseChatStatus(chatInfo.Status)
}

// Send submits a message. Gating is client-side: a locked or closed channel
// rejects before any network call. On success the backend-returned message
// is appended immediately so the sender sees it ahead of the next tick.
func (ch *Channel) Send(ctx context.Context, content string) (models.Message, error) {
	ch.mu.Lock()
	status := ch.status
	ch.mu.Unlock()

	switch status {
	case models.ChatStatusLocked:
		return models.Message{}, ErrChannelLocked
	case models.ChatStatusClosed:
		return models.Message{}, ErrChannelClosed
	}

	msg, err := api.Do[models.Message](ctx, ch.client, "/chats/"+ch.chatID+"/messages", api.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"content": content},
		Auth:   true,
		Token:  ch.tokens.Token(),
	})
	if err != nil {
		return models.Message{}, err
	}

	ch.mu.Lock()
	if !ch.stopped {
		ch.messages = append(ch.messages, msg)
	}
	ch.mu.Unlock()

	return msg, nil
}

// ConfirmDeal unlocks the channel. The status adopted is whatever the
// backend returns, not a hard-coded unlocked: server-side rules may move
// the chat somewhere else entirely. On failure status is unchanged.
func (ch *Channel) ConfirmDeal(ctx context.Context) (models.ChatStatus, error) {
	chatInfo, err := api.Do[models.Chat](ctx, ch.client, "/chats/"+ch.chatID+"/confirm-deal", api.Options{
		Method: http.MethodPost,
		Body:   map[string]bool{"confirm": true},
		Auth:   true,
		Token:  ch.tokens.Token(),
	})
	if err != nil {
		return ch.Status(), err
	}

	next := models.ParseChatStatus(chatInfo.Status)

	ch.mu.Lock()
	if !ch.stopped {
		ch.status = next
	}
	ch.mu.Unlock()

	return next, nil
}

// Status returns the current lock status.
func (ch *Channel) Status() models.ChatStatus {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.status
}
