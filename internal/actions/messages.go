package actions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/featherpost/client/internal/follow"
	"github.com/featherpost/client/internal/gateway"
	"github.com/featherpost/client/internal/repo"
	"github.com/featherpost/client/internal/session"
)

// Message translates a failed action into the text shown to the user. Field
// errors from the backend are surfaced verbatim next to their field names.
func Message(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, session.ErrLoginRequired):
		return "You need to log in first. Run the login command to continue."
	case errors.Is(err, ErrBusy), errors.Is(err, follow.ErrPending):
		return "That action is already in progress. Wait for it to finish."
	case errors.Is(err, ErrNotAllowed):
		return "You are not allowed to do that."
	case errors.Is(err, follow.ErrSelfFollow):
		return "You cannot follow your own account."
	case errors.Is(err, repo.ErrNotFound):
		return "That post is not in the loaded feed. Refresh and try again."
	case errors.Is(err, repo.ErrViewClosed):
		return "These comments are no longer open."
	}

	var validationErr *gateway.ValidationError
	if errors.As(err, &validationErr) {
		if len(validationErr.Fields) == 0 {
			return validationErr.Message
		}
		names := make([]string, 0, len(validationErr.Fields))
		for name := range validationErr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		lines := make([]string, 0, len(names))
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("%s: %s", name, validationErr.Fields[name]))
		}
		return strings.Join(lines, "\n")
	}

	var authErr *gateway.AuthError
	if errors.As(err, &authErr) {
		return "Your session is no longer valid. Please log in again."
	}

	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the server. Check your connection and try again."
	}

	var serverErr *gateway.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.Message != "" {
			return serverErr.Message
		}
		return "The server reported an error. Try again later."
	}

	return err.Error()
}
