// Package qobuz implements a client for the private Qobuz JSON API
// (v0.2).
//
// The Client owns a single authenticated session. Every call carries the
// X-App-Id header and, once authenticated, the user_auth_token query
// parameter. The track/getFileUrl endpoint additionally requires an MD5
// request signature that can only be produced with a valid app secret;
// the client discovers a working secret lazily by probing the candidates
// it was constructed with, in order, and caches the first one that the
// server accepts for the rest of the session.
//
// # Basic Usage
//
//	client := qobuz.NewClient(appID, secrets, logger)
//	if err := client.LoginWithToken(ctx, token); err != nil {
//	    return err
//	}
//	album, err := client.Album(ctx, "0060254735180")
//
// Errors are classified with the sentinel values in errors.go; use
// errors.Is to distinguish fatal configuration problems (bad app id or
// secret, bad credentials) from recoverable per-item failures.
package qobuz
