// Package queue carries bookmark events over RabbitMQ and runs the
// link-preview consumer that fills in missing bookmark descriptions.
package queue

// BookmarkSavedQueue is the durable queue bookmark events are sent to.
const BookmarkSavedQueue = "bookmark.saved"

// BookmarkSavedEvent is published when a bookmark is stored without a
// description. It carries enough for the worker to fetch the page and
// update the row without reading the bookmark first.
type BookmarkSavedEvent struct {
    BookmarkID uint64 `json:"bookmark_id"`
    UserID     uint64 `json:"user_id"`
    URL        string `json:"url"`
    SavedAt    string `json:"saved_at"`
}
