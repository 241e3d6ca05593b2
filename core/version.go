package core

// Version is the client library version reported in the User-Agent header.
const Version = "0.1.0"
