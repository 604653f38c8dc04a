package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/notestack/internal/cache"
)

// DescriptionFiller sets a bookmark description while it is still empty.
type DescriptionFiller interface {
    FillDescription(ctx context.Context, id, userID uint64, description string) (bool, error)
}

// Invalidator drops a user's cached lists for a resource.
type Invalidator interface {
    Bump(ctx context.Context, userID uint64, resource string) error
}

// PreviewHandler turns a bookmark.saved message into a filled description.
type PreviewHandler struct {
    Bookmarks DescriptionFiller
    Fetch     func(ctx context.Context, url string) (string, error)
    Cache     Invalidator // optional
    Timeout   time.Duration
}

// Handle processes one message body. Malformed messages return an error so
// they are rejected; fetch failures are logged and acknowledged because a
// retry would most likely fail the same way.
func (h *PreviewHandler) Handle(ctx context.Context, body []byte) error {
    var ev BookmarkSavedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.BookmarkID == 0 || ev.UserID == 0 || ev.URL == "" {
        return errors.New("incomplete bookmark event")
    }

    timeout := h.Timeout
    if timeout <= 0 {
        timeout = DefaultFetchTimeout
    }
    fctx, cancel := context.WithTimeout(ctx, timeout)
    defer cancel()

    logger := log.With().Uint64("bookmark_id", ev.BookmarkID).Str("url", ev.URL).Logger()
    title, err := h.Fetch(fctx, ev.URL)
    if err != nil {
        logger.Info().Err(err).Msg("preview fetch failed")
        return nil
    }
    if title == "" {
        logger.Debug().Msg("page has no title")
        return nil
    }

    changed, err := h.Bookmarks.FillDescription(ctx, ev.BookmarkID, ev.UserID, title)
    if err != nil {
        return fmt.Errorf("fill description: %w", err)
    }
    if !changed {
        return nil
    }
    if h.Cache != nil {
        if err := h.Cache.Bump(ctx, ev.UserID, cache.Bookmarks); err != nil {
            logger.Warn().Err(err).Msg("cache invalidation failed")
        }
    }
    logger.Info().Msg("bookmark description filled")
    return nil
}

// StartPreviewConsumer connects to RabbitMQ, declares the bookmark.saved
// queue and hands each delivery to h. It reconnects with exponential
// backoff until ctx is cancelled, then returns ctx.Err().
func StartPreviewConsumer(ctx context.Context, url string, h *PreviewHandler) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn().Err(err).Dur("retry_in", backoff).Msg("preview-consumer: failed to dial broker")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, h)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn().Err(err).Msg("preview-consumer: consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, h *PreviewHandler) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(10, 0, false); err != nil {
        log.Warn().Err(err).Msg("preview-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(BookmarkSavedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(BookmarkSavedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    log.Info().Str("queue", BookmarkSavedQueue).Msg("preview-consumer: consuming")
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            settle(d, h.Handle(ctx, d.Body))
        }
    }
}

// acknowledger is the part of amqp.Delivery settle needs.
type acknowledger interface {
    Ack(multiple bool) error
    Nack(multiple, requeue bool) error
}

func settle(d acknowledger, err error) {
    if err != nil {
        log.Error().Err(err).Msg("preview-consumer: handle message failed")
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    _ = d.Ack(false)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
