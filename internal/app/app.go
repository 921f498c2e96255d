// Package app wires the client components together and dispatches CLI
// commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/featherpost/client/internal/actions"
	"github.com/featherpost/client/internal/config"
	"github.com/featherpost/client/internal/feed"
	"github.com/featherpost/client/internal/follow"
	"github.com/featherpost/client/internal/gateway"
	"github.com/featherpost/client/internal/logging"
	"github.com/featherpost/client/internal/repo"
	"github.com/featherpost/client/internal/session"
)

const usage = `usage: featherpost <command> [args]

commands:
  register <screenName> <password> [bio]   create an account
  login <screenName> <password>            start a session
  logout                                   end the session locally
  whoami                                   show the viewer profile
  feed                                     show the feed
  post <content>                           publish a post
  edit <id> <content>                      edit one of your posts
  delete <id>                              delete a post
  comments <postId>                        show a post's comments
  comment <postId> <content>               comment on a post
  follow <userId>                          follow an author
  unfollow <userId>                        unfollow an author
`

// Run bootstraps the client and executes one command.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("expected a command")
	}

	c, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx = logging.WithLogger(ctx, c.logger)

	if err := c.sessions.Restore(ctx); err != nil {
		// A broken state database should not keep the client from running
		// anonymously.
		c.logger.Warn("could not restore session", "error", err)
	}

	return c.dispatch(ctx, args[0], args[1:])
}

// client groups the wired components for command handlers.
type client struct {
	logger     *slog.Logger
	out        io.Writer
	sessions   *session.Store
	orch       *feed.Orchestrator
	reconciler *follow.Reconciler
	composer   *actions.Composer
	commenter  *actions.Commenter
	auth       *actions.Auth
	profile    *repo.ProfileRepository
}

func setup(ctx context.Context) (*client, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if dir := filepath.Dir(cfg.StatePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	tokens, err := session.OpenSQLiteTokenStore(cfg.StatePath)
	if err != nil {
		return nil, nil, err
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	authClient := gateway.NewAuthClient(cfg.BaseURL, httpClient)
	sessions := session.New(tokens, authClient)
	gw := gateway.New(cfg.BaseURL, sessions,
		gateway.WithHTTPClient(httpClient),
		gateway.WithRateLimit(cfg.RatePerSecond, cfg.RateBurst),
	)

	posts := repo.NewPostRepository(gw)
	profile := repo.NewProfileRepository(gw)
	reconciler := follow.New(gw, profile, sessions)
	orch := feed.New(posts, profile, reconciler, sessions)

	c := &client{
		logger:     logger,
		out:        os.Stdout,
		sessions:   sessions,
		orch:       orch,
		reconciler: reconciler,
		composer:   actions.NewComposer(posts, sessions, profile, orch),
		commenter:  actions.NewCommenter(gw, sessions),
		auth:       actions.NewAuth(sessions, authClient),
		profile:    profile,
	}

	// Login-state transitions trigger a full reload; an invalidation also
	// points the user back at the login entry point. The restore at startup
	// happens before anything is rendered, so it needs no reload.
	sessions.Subscribe(func(change session.Change) {
		if change.Reason == session.ReasonRestored {
			return
		}
		if change.Reason == session.ReasonInvalidated {
			fmt.Fprintln(os.Stderr, "Your session is no longer valid. Run 'featherpost login' to sign in again.")
		}
		orch.HandleSessionChange(logging.WithLogger(context.Background(), logger), change)
	})

	cleanup := func() {
		if err := tokens.Close(); err != nil {
			logger.Warn("failed to close state database", "error", err)
		}
	}
	return c, cleanup, nil
}

func (c *client) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.register(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami(ctx)
	case "feed":
		return c.feed(ctx)
	case "post":
		return c.post(ctx, args)
	case "edit":
		return c.edit(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	case "comments":
		return c.comments(ctx, args)
	case "comment":
		return c.comment(ctx, args)
	case "follow":
		return c.follow(ctx, args, true)
	case "unfollow":
		return c.follow(ctx, args, false)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
