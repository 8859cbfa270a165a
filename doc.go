// Package redd is a client for Reddit's OAuth2 REST API.
//
// # Overview
//
// The package is organised as a small hierarchy of clients. Every client embeds
// a base Client that resolves paths against one endpoint, sends the configured
// User-Agent and decodes JSON responses into read-only models:
//
//   - Authorization strategies (Script, Userless) talk to the auth host with
//     HTTP Basic credentials and return a model.Access.
//   - API talks to the OAuth host with the access token as a bearer token and
//     exposes endpoint groups as namespaces (API.Account).
//
// Configuration lives in package options and is immutable once built.
//
// # Quick Start
//
// Obtain a token with the password grant, then fetch the current user:
//
//	authOpts, err := options.NewAuthorization(map[string]any{
//		"user_agent": "myapp/1.0 by /u/yourusername",
//		"client_id":  "your-client-id",
//		"secret":     "your-client-secret",
//		"username":   "yourusername",
//		"password":   "yourpassword",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	script, err := redd.NewScript(authOpts)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	access, err := script.Authorize(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	apiOpts, err := options.NewAPI(map[string]any{"access": access})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	api, err := redd.NewAPI(apiOpts)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	me, err := api.Account().Me(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(me) // prints the user's name
//
// # Access Tokens
//
// An Access never refreshes itself. Its expiry is measured from the moment it
// was built on this machine, not from the server's issue time, so treat
// ExpiresAt as an approximation. Check Expired before long-running work and
// authorize again to replace the token.
//
// # Error Handling
//
// Errors are typed structs from package errors and are matched with errors.As:
//
//	_, err := api.Account().Me(ctx)
//	var jsonErr *errors.JSONError
//	var respErr *errors.ResponseError
//	switch {
//	case stderrors.As(err, &jsonErr):
//		// Body was not JSON; jsonErr.Body() holds it
//	case stderrors.As(err, &respErr):
//		if respErr.Retryable() {
//			// 5xx, worth trying again
//		}
//	}
//
// A *errors.JSONError also matches *errors.ResponseError. No request is ever
// retried by the package itself.
//
// # Logging
//
// Pass a logger to see request and response debug records:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	}))
//	api, err := redd.NewAPI(apiOpts, redd.WithLogger(logger))
//
// Client secrets, passwords and tokens are never logged.
package redd
