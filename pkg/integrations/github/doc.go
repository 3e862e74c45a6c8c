// Package github provides a minimal client for the GitHub REST API.
//
// The probe runner authenticates against GitHub with GITHUB_TOKEN. Before a
// run starts, [Client.ValidateToken] confirms the token is accepted, and
// after a timeout [Client.RateLimit] reports how much of the hourly quota is
// left, which is the usual reason for a stalled runner.
//
//	client := github.NewClient(token)
//	user, err := client.ValidateToken(ctx)
//	limits, err := client.RateLimit(ctx)
//	fmt.Println(limits.Core.Remaining, limits.Core.ResetAt())
package github
