package model

// User is a reddit account.
type User struct {
	Model
}

// NewUser wraps the attributes of an account response.
func NewUser(client Client, attrs map[string]Value) *User {
	return &User{Model: newModel("user", client, attrs)}
}

// Name returns the account name.
func (u *User) Name() string { return u.stringAttr("name") }

// String returns the account name.
func (u *User) String() string { return u.Name() }
