package cli

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/integrations"
	"github.com/aunovis/secure-sum/pkg/integrations/github"
)

// tokenEnv is read by the runner as well.
const tokenEnv = "GITHUB_TOKEN"

// dotenvFile is loaded from the working directory. Variables already set in
// the environment take precedence.
var dotenvFile = ".env"

func loadDotenv(logger *log.Logger) {
	err := godotenv.Load(dotenvFile)
	switch {
	case err == nil:
		logger.Debug("Loaded environment file", "path", dotenvFile)
	case stderrors.Is(err, fs.ErrNotExist):
	default:
		logger.Warn("Could not load environment file", "path", dotenvFile, "err", err)
	}
}

// githubToken returns the configured token or an error explaining how to
// provide one.
func githubToken() (string, error) {
	token := strings.TrimSpace(os.Getenv(tokenEnv))
	if token == "" {
		return "", errors.New(errors.ErrCodeUnauthorized,
			"%s is not set. Export it or add it to a %s file in the working directory.", tokenEnv, dotenvFile)
	}
	return token, nil
}

// checkToken verifies the token against the GitHub API.
func checkToken(ctx context.Context, logger *log.Logger, gh *github.Client) error {
	user, err := gh.ValidateToken(ctx)
	if err != nil {
		if stderrors.Is(err, integrations.ErrUnauthorized) {
			return errors.Wrap(errors.ErrCodeUnauthorized, err, "%s is invalid", tokenEnv)
		}
		return errors.Wrap(errors.ErrCodeNetwork, err, "could not verify %s", tokenEnv)
	}
	logger.Debug("GitHub token is valid", "user", user.Login)
	return nil
}

// logRateLimit reports the remaining GitHub quota after a timeout.
func logRateLimit(ctx context.Context, logger *log.Logger, gh *github.Client) {
	limits, err := gh.RateLimit(ctx)
	if err != nil {
		logger.Debug("Could not query the GitHub rate limit", "err", err)
		return
	}
	core := limits.Core
	logger.Warn("GitHub rate limit",
		"remaining", core.Remaining,
		"limit", core.Limit,
		"reset", core.ResetAt().Local().Format("15:04:05"))
}
