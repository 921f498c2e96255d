package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/featherpost/client/internal/actions"
	"github.com/featherpost/client/internal/gateway"
)

func (c *client) register(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: register <screenName> <password> [bio]")
	}
	reg := gateway.Registration{ScreenName: args[0], Password: args[1]}
	if len(args) > 2 {
		reg.Bio = strings.Join(args[2:], " ")
	}

	created, err := c.auth.Register(ctx, reg)
	if err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.out, "Account @%s created. Log in with 'featherpost login %s <password>'.\n", created.Tag, created.Tag)
	return nil
}

func (c *client) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <screenName> <password>")
	}

	if err := c.auth.Login(ctx, args[0], args[1]); err != nil {
		return c.fail(err)
	}

	fmt.Fprintln(c.out, "Logged in.")
	if expires, ok := c.sessions.ExpiresAt(); ok {
		fmt.Fprintf(c.out, "Session valid until %s.\n", expires.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *client) logout(ctx context.Context) error {
	c.auth.Logout(ctx)
	fmt.Fprintln(c.out, "Logged out.")
	return nil
}

func (c *client) whoami(ctx context.Context) error {
	if !c.sessions.LoggedIn() {
		fmt.Fprintln(c.out, "Not logged in.")
		return nil
	}

	if err := c.profile.Refresh(ctx); err != nil {
		return c.fail(err)
	}

	profile, _ := c.profile.Profile()
	renderProfile(c.out, profile)
	if expires, ok := c.sessions.ExpiresAt(); ok {
		fmt.Fprintf(c.out, "Session valid until %s.\n", expires.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *client) feed(ctx context.Context) error {
	c.orch.Reload(ctx)
	return c.renderFeed()
}

func (c *client) post(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: post <content>")
	}

	created, err := c.composer.Create(ctx, strings.Join(args, " "))
	if err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.out, "Posted #%d.\n", created.ID)
	return c.renderFeed()
}

func (c *client) edit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: edit <id> <content>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	// Edits operate on the loaded feed, so make sure it is loaded.
	c.orch.Reload(ctx)

	updated, err := c.composer.Edit(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.out, "Updated #%d.\n", updated.ID)
	return c.renderFeed()
}

func (c *client) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	c.orch.Reload(ctx)

	if err := c.composer.Delete(ctx, id); err != nil {
		return c.fail(err)
	}

	fmt.Fprintf(c.out, "Deleted #%d.\n", id)
	return c.renderFeed()
}

func (c *client) comments(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: comments <postId>")
	}
	postID, err := parseID(args[0])
	if err != nil {
		return err
	}

	view, err := c.commenter.Open(ctx, postID)
	if err != nil {
		return c.fail(err)
	}
	defer view.Close()

	renderComments(c.out, postID, view.Comments())
	return nil
}

func (c *client) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: comment <postId> <content>")
	}
	postID, err := parseID(args[0])
	if err != nil {
		return err
	}

	view, err := c.commenter.Open(ctx, postID)
	if err != nil {
		return c.fail(err)
	}
	defer view.Close()

	if _, err := view.Post(ctx, strings.Join(args[1:], " ")); err != nil {
		return c.fail(err)
	}

	renderComments(c.out, postID, view.Comments())
	return nil
}

func (c *client) follow(ctx context.Context, args []string, following bool) error {
	if len(args) != 1 {
		return errors.New("usage: follow|unfollow <userId>")
	}
	userID, err := parseID(args[0])
	if err != nil {
		return err
	}

	// The follow set lives on the viewer profile; load it first so the
	// reconciler has something to patch.
	if c.sessions.LoggedIn() {
		if err := c.profile.Refresh(ctx); err != nil {
			return c.fail(err)
		}
	}

	if following {
		err = c.reconciler.Follow(ctx, userID)
	} else {
		err = c.reconciler.Unfollow(ctx, userID)
	}
	if err != nil {
		return c.fail(err)
	}

	if following {
		fmt.Fprintf(c.out, "Now following user %d.\n", userID)
	} else {
		fmt.Fprintf(c.out, "No longer following user %d.\n", userID)
	}
	return nil
}

func (c *client) renderFeed() error {
	feedErr, profileErr := c.orch.Errors()
	if profileErr != nil {
		// The profile slot failing must not hide a successfully loaded feed.
		fmt.Fprintf(c.out, "! could not load your profile: %s\n", actions.Message(profileErr))
	}
	if feedErr != nil {
		return c.fail(feedErr)
	}

	renderEntries(c.out, c.orch.Snapshot())
	return nil
}

// fail prints the user-facing translation of the error and returns it so the
// process exits non-zero.
func (c *client) fail(err error) error {
	fmt.Fprintln(c.out, actions.Message(err))
	return err
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
