/*
Package auth guards the library behind a login gate and implements the
password reset flow.

The gate is a small state machine:

	StateNotReady → StateLoggedOut → StateStudent | StateAdmin

StateNotReady lasts until Load has read the persisted session markers;
callers that check the session before that must hold instead of treating the
gate as logged out. The markers live in the same storage backend as the
collections and changes are announced on the bus, so peer processes converge
on one session.

Logins match the configured admin credential pair first, then the registered
users by bcrypt hash. The reset flow is three-step: RequestReset mails a
uniformly random 6-digit code with a 10-minute lifetime, VerifyCode checks
it, CompleteReset re-hashes the password. Codes live in process memory only.

Mail delivery goes through the Mailer port. NewSMTPMailer sends through a
configured relay; without one the gate falls back to a preview mailer that
logs the message, so the flow works in development.
*/
package auth
