package model

import "time"

// Bookmark is a saved link owned by exactly one user (`bookmarks` table).
// Visited defaults to the creation time and is stamped on each visit.
type Bookmark struct {
    ID          uint64    `json:"id"`
    UserID      uint64    `json:"userId"`
    Title       string    `json:"title"`
    URL         string    `json:"url"`
    Description string    `json:"description"`
    Tags        []string  `json:"tags"`
    Favorite    bool      `json:"favorite"`
    Visited     time.Time `json:"visited"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// BookmarkInput carries the user-editable fields of a bookmark.
type BookmarkInput struct {
    Title       string
    URL         string
    Description string
    Tags        []string
    Favorite    bool
}

// BookmarkFilter narrows a bookmark search. Empty fields match everything.
type BookmarkFilter struct {
    Query        string // case-insensitive match on title or url, exact match on a tag
    FavoriteOnly bool
}
