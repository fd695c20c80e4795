// Package creds supplies the API credentials (app id and candidate
// secrets) a session needs before it can sign requests.
package creds

import "context"

// Provider yields an app id and an ordered list of candidate secrets.
// The order is an opaque efficiency hint from the provider: the client
// tries candidates in order and keeps the first one the server
// accepts, so providers should put their best guess first.
type Provider interface {
	Credentials(ctx context.Context) (appID string, secrets []string, err error)
}

// Static serves credentials the user configured directly.
type Static struct {
	AppID   string
	Secrets []string
}

func (s Static) Credentials(context.Context) (string, []string, error) {
	return s.AppID, s.Secrets, nil
}
