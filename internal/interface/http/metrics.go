package handlers

import "expvar"

// Counters exposed on /debug/vars.
var (
	loginSuccess    = expvar.NewInt("auth_login_success_total")
	loginFailure    = expvar.NewInt("auth_login_failure_total")
	usersRegistered = expvar.NewInt("users_registered_total")
	postsCreated    = expvar.NewInt("posts_created_total")
)
