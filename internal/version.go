package internal

// Version is the library version reported in the default user agent.
const Version = "0.1.0"
