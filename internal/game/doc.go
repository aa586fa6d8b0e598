// Package game implements the multiplayer blackjack session engine.
//
// One Session exists per chat room and moves through a single forward
// path: Joining → Betting → Dealing → PlayerTurns → HouseTurn →
// Settlement → Closed. Sessions are event driven: player actions
// arriving from the chat gateway, timers firing, and advisory replies
// are the only things that mutate state, and a per-session mutex
// serializes them so each room behaves as a single logical thread.
// Rooms are fully independent; the shared Ledger does its own locking.
//
// Timers come from a quartz.Clock so tests drive timeouts
// deterministically. A participant has at most one outstanding timer,
// and acting cancels it before any state changes (cancel-then-replace);
// a callback that still fires re-checks whose turn it is under the
// session lock before doing anything.
package game
