package redd

import (
	"context"
	"net/http"

	"github.com/jamesprial/go-redd/pkg/model"
)

// Account groups the endpoints about the authenticated user.
type Account struct {
	*Authenticated
}

func newAccount(parent *Authenticated) *Account {
	a := &Account{Authenticated: parent}
	parent.owner = a
	return a
}

// Me returns the user the access token belongs to.
func (a *Account) Me(ctx context.Context) (*model.User, error) {
	return buildModel[*model.User](ctx, a.Client, "user", http.MethodGet, "api/v1/me", nil)
}
