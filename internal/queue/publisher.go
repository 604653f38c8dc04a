package queue

import (
    "context"
    "encoding/json"
    "net"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/notestack/internal/model"
)

// Publisher sends persistent JSON messages to durable queues on the
// default exchange. It dials per publish: bookmark creation is rare enough
// that a long-lived channel is not worth its reconnect logic.
type Publisher struct {
    url string
}

// dialTimeout bounds the broker handshake when ctx carries no deadline.
const dialTimeout = 3 * time.Second

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// Publish declares queue (idempotent) and sends v as JSON. Errors are
// logged and returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, queue string, v any) error {
    body, err := json.Marshal(v)
    if err != nil {
        return err
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      contextDial(ctx),
    })
    if err != nil {
        log.Warn().Err(err).Msg("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Warn().Err(err).Msg("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        log.Warn().Err(err).Str("queue", queue).Msg("rabbitmq: queue declare failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        log.Warn().Err(err).Str("queue", queue).Msg("rabbitmq: publish failed")
        return err
    }
    return nil
}

// contextDial connects within ctx and carries its deadline into the AMQP
// handshake. The library clears the deadline once the connection is open.
func contextDial(ctx context.Context) func(network, addr string) (net.Conn, error) {
    return func(network, addr string) (net.Conn, error) {
        deadline, ok := ctx.Deadline()
        if !ok {
            deadline = time.Now().Add(dialTimeout)
        }
        d := net.Dialer{Deadline: deadline}
        conn, err := d.DialContext(ctx, network, addr)
        if err != nil {
            return nil, err
        }
        if err := conn.SetDeadline(deadline); err != nil {
            _ = conn.Close()
            return nil, err
        }
        return conn, nil
    }
}

// BookmarkSaved publishes a BookmarkSavedEvent for b.
func (p *Publisher) BookmarkSaved(ctx context.Context, b *model.Bookmark) error {
    return p.Publish(ctx, BookmarkSavedQueue, newBookmarkSavedEvent(b))
}

func newBookmarkSavedEvent(b *model.Bookmark) BookmarkSavedEvent {
    return BookmarkSavedEvent{
        BookmarkID: b.ID,
        UserID:     b.UserID,
        URL:        b.URL,
        SavedAt:    b.CreatedAt.UTC().Format(time.RFC3339),
    }
}
