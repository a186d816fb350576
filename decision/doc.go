// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package decision implements the decision lifecycle.

A decision is open from creation until it closes; it never reopens.
Three triggers close it:

  - Expiry: EnsureNotExpired runs on every read path. An open decision whose
    expires_at has passed is closed on the spot.
  - Manual close: Close, by the organizer or a staff operator.
  - Full participation: Complete closes the decision once every
    participant has completed.

# Full Closing

Every trigger runs the same procedure inside one store transaction:

 1. Load options (display order) and all votes grouped by option
 2. Score them with the scoring package
 3. Fail with ErrNoOptions if there is no winner
 4. Count participants and build the result summary
 5. Insert the result (ON CONFLICT DO NOTHING)
 6. UPDATE decision SET status = 'closed' ... WHERE status = 'open'

Only the caller whose update matched a row reports the close; everyone else
sees "already closed". Expiry on a decision with no options closes it
without a result.

# Usage

	svc := decision.NewService(st, appconfig.New(st), cfg.OrganizerKeySalt,
		decision.WithLogger(logger))

	p, err := svc.AuthenticateParticipant(ctx, id, token)
	err = svc.CastVote(ctx, id, p, optionID, 2)
	res, err := svc.Complete(ctx, id, p)

# Errors

Failures wrap one of the package sentinels. CategoryOf maps them onto
validation, auth, not_found, conflict or internal:

	switch decision.CategoryOf(err) {
	case decision.CategoryValidation:
		// 400
	}
*/
package decision
