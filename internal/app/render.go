package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/featherpost/client/internal/feed"
	"github.com/featherpost/client/internal/follow"
	"github.com/featherpost/client/internal/models"
)

const timeLayout = "2006-01-02 15:04"

func renderEntries(w io.Writer, entries []feed.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No posts yet. Be the first to post!")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		marker := followMarker(e.Follow)
		var ops []string
		if e.CanEdit {
			ops = append(ops, "edit")
		}
		if e.CanDelete {
			ops = append(ops, "delete")
		}
		opsCol := ""
		if len(ops) > 0 {
			opsCol = "[" + strings.Join(ops, ",") + "]"
		}

		fmt.Fprintf(tw, "#%d\t%s\t@%s%s\t%s\t%s\n",
			e.Post.ID,
			e.Post.PostedAt.Local().Format(timeLayout),
			e.Post.AuthorTag,
			marker,
			e.Post.Content,
			opsCol,
		)
	}
	tw.Flush()
}

func followMarker(state follow.State) string {
	switch state {
	case follow.StateSelf:
		return " (you)"
	case follow.StateFollowing:
		return " [following]"
	case follow.StatePending:
		return " [pending]"
	default:
		return ""
	}
}

func renderComments(w io.Writer, postID int64, comments []models.Comment) {
	if len(comments) == 0 {
		fmt.Fprintf(w, "No comments on post #%d yet.\n", postID)
		return
	}

	fmt.Fprintf(w, "Comments on post #%d:\n", postID)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range comments {
		fmt.Fprintf(tw, "  %s\t@%s\t%s\n",
			c.PostedAt.Local().Format(timeLayout),
			c.AuthorTag,
			c.Content,
		)
	}
	tw.Flush()
}

func renderProfile(w io.Writer, p models.ViewerProfile) {
	fmt.Fprintf(w, "@%s (id %d, %s)\n", p.Tag, p.ID, p.Role)
	if p.Bio != "" {
		fmt.Fprintf(w, "  %s\n", p.Bio)
	}
	fmt.Fprintf(w, "  following %d, followers %d\n", p.FollowingCount, p.FollowersCount)
}
