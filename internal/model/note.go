package model

import "time"

// Note is a text document owned by exactly one user (`notes` table).
// Tags are stored as a JSON array column.
type Note struct {
    ID        uint64    `json:"id"`
    UserID    uint64    `json:"userId"`
    Title     string    `json:"title"`
    Content   string    `json:"content"`
    Tags      []string  `json:"tags"`
    Favorite  bool      `json:"favorite"`
    CreatedAt time.Time `json:"createdAt"`
    UpdatedAt time.Time `json:"updatedAt"`
}

// NoteInput carries the user-editable fields of a note.
type NoteInput struct {
    Title   string
    Content string
    Tags    []string
}

// NoteFilter narrows a note search. Empty fields match everything.
type NoteFilter struct {
    Query        string   // case-insensitive match on title or content
    Tags         []string // any of these tags
    FavoriteOnly bool
}
