package redd

import "github.com/jamesprial/go-redd/internal"

// Version is the library version, also used in the default User-Agent.
const Version = internal.Version
