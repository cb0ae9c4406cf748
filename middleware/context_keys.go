package middleware

// ActorHeader carries the caller's participant identifier. Authentication
// happens upstream; this service trusts the header as given.
const ActorHeader = "X-User-ID"
