// Package sync implements the reconciliation core of focuskan.
//
// Each run rebuilds the full picture from scratch: a snapshot of the
// local task manager's projects and a listing of the board's stories.
// No sync state is persisted between runs; the only linkage between the
// two entity spaces is the local project identifier embedded in each
// story's details text (see identity.go). This statelessness makes the
// whole design idempotent-by-rescan: a failed run leaves some entities
// unsynchronized and the next successful run converges them.
//
// A run proceeds in a fixed order:
//
//  1. Classify: pair stories with projects via the embedded identifier
//     and split everything into matched / new / orphan (match.go).
//  2. Delete orphaned stories that are not in a completed phase.
//  3. Create stories for new projects, tasks in local order.
//  4. For each matched pair: apply remote-driven local writes first
//     (phase and task completion flow board -> task manager), then
//     local-driven content writes (everything else flows task
//     manager -> board), then reconcile the task lists (reconcile.go).
//
// The precedence is asymmetric on purpose. The task manager always wins
// for content fields; the board wins for status, because a card moved
// forward on the board records real progress. Both directions are
// forward-only: neither side ever moves a project or story backward.
package sync
