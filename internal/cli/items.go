package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/notestack/internal/client"
	"github.com/iliyamo/notestack/internal/model"
)

func (a *App) notes(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		var (
			notes []model.Note
			err   error
		)
		if len(args) > 0 && args[0] == "fav" {
			notes, err = a.api.FavoriteNotes(ctx)
		} else {
			notes, err = a.api.ListNotes(ctx)
		}
		if err != nil {
			return err
		}
		a.printNotes(notes)
		return nil
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("missing search text")
		}
		notes, err := a.api.SearchNotes(ctx, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		a.printNotes(notes)
		return nil
	case "show":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		n, err := a.api.GetNote(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s%s\n", n.Title, tagSuffix(n.Tags))
		fmt.Fprintln(a.out, n.Content)
		return nil
	case "add":
		title := strings.Join(args, " ")
		if title == "" {
			var err error
			if title, err = a.prompt("Title"); err != nil {
				return err
			}
		}
		content, err := a.prompt("Content")
		if err != nil {
			return err
		}
		tags, err := a.prompt("Tags (comma separated)")
		if err != nil {
			return err
		}
		n, err := a.api.CreateNote(ctx, client.NoteInput{Title: title, Content: content, Tags: splitList(tags)})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created note %d\n", n.ID)
		return nil
	case "rm":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := a.api.DeleteNote(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted note %d\n", id)
		return nil
	case "fav":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		fav, err := a.api.ToggleNoteFavorite(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "note %d favorite=%t\n", id, fav)
		return nil
	}
	return fmt.Errorf("unknown notes command %q", sub)
}

func (a *App) bookmarks(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		var (
			list []model.Bookmark
			err  error
		)
		if len(args) > 0 && args[0] == "fav" {
			list, err = a.api.FavoriteBookmarks(ctx)
		} else {
			list, err = a.api.ListBookmarks(ctx)
		}
		if err != nil {
			return err
		}
		a.printBookmarks(list)
		return nil
	case "search":
		if len(args) == 0 {
			return fmt.Errorf("missing search text")
		}
		list, err := a.api.SearchBookmarks(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		a.printBookmarks(list)
		return nil
	case "add":
		if len(args) == 0 {
			return fmt.Errorf("missing url")
		}
		url := args[0]
		title := strings.Join(args[1:], " ")
		if title == "" {
			title = url
		}
		b, err := a.api.CreateBookmark(ctx, client.BookmarkInput{Title: title, URL: url})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "created bookmark %d\n", b.ID)
		return nil
	case "rm":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := a.api.DeleteBookmark(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted bookmark %d\n", id)
		return nil
	case "fav":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		fav, err := a.api.ToggleBookmarkFavorite(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "bookmark %d favorite=%t\n", id, fav)
		return nil
	case "visit":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		b, err := a.api.VisitBookmark(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, b.URL)
		return nil
	}
	return fmt.Errorf("unknown bookmarks command %q", sub)
}

func (a *App) printNotes(notes []model.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(a.out, "no notes")
		return
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tFAV\tTITLE\tTAGS\tUPDATED")
	for _, n := range notes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", n.ID, star(n.Favorite), n.Title, strings.Join(n.Tags, ","), n.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func (a *App) printBookmarks(list []model.Bookmark) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no bookmarks")
		return
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tFAV\tTITLE\tURL\tDESCRIPTION")
	for _, b := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, star(b.Favorite), b.Title, b.URL, b.Description)
	}
	_ = w.Flush()
}

func tagSuffix(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " [" + strings.Join(tags, ", ") + "]"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
