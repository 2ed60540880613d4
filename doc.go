// Package auth implements the authentication and authorization core
// of the rental marketplace backend: credential storage, stateless
// bearer tokens, the single-use password-reset ledger, and role based
// access control, plus the JSON HTTP surface that exposes them.
//
// Bearer tokens are HS256 signed JWTs and carry their own expiry; the
// server keeps no revocation list, so logout is advisory and a token
// issued before logout stays valid until it expires. Reset tokens are
// random opaque secrets persisted in the reset ledger, valid for one
// hour and consumable exactly once, atomically with the password
// change they authorize.
package auth
