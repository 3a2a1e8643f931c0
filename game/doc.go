// Copyright (c) 2026 Mara Hartman.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package game implements the round lifecycle: role distribution,
accusations, vote tallying, and the next-round cascade.

# State Model

A session moves lobby -> playing -> ... -> completed. The session row in
the store is the only shared mutable state; every operation re-derives
truth from it, so handlers stay stateless and horizontally scalable.

# Concurrency

There are no in-process locks. Three store-level primitives do all the
coordination:

  - a conditional UPDATE on session.status/current_mystery_id decides
    which concurrent caller distributes roles (losers no-op)
  - the Round primary key (session_id, mystery_id) makes accusations
    exactly-once (losers read the winner's result)
  - the vote primary key (session_id, player_id, round_number) collapses
    re-votes to last-write-wins

# Operations

	res, err := game.DistributeRoles(db, rng, sessionID, mysteryID)
	res, err := game.SubmitAccusation(db, sessionID, accuserID, accusedID)
	out, err := game.SubmitVote(db, rng, sessionID, playerID, &mysteryID)
	tally, err := game.TallyVotes(db, rng, sessionID)

SubmitVote runs the cascade inline: when the last active player votes,
that request tallies and starts the next round via direct function
calls, not network self-calls.

# Randomness

Shuffles and tie-breaks draw from an injected *Rand so tests can seed
them. Investigator selection prefers players who have never held the
role; the vote tie-break is uniform over the tied set.

# Known Limitation

A player who never votes stalls the cascade indefinitely; there is no
timeout. The host can kick the stalled player, which lowers the
threshold, and any subsequent vote re-checks it.
*/
package game
