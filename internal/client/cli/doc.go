// Package cli provides the interactive classroom portal client.
//
// It wires configuration, the local session store, the portal API client and
// an interactive REPL. Every screen is opened through the router, so the
// access gate decides what a signed-in teacher or student may see.
//
// Key features:
//   - Signup / Login / Logout (session persisted across restarts)
//   - Role dashboards and listings for classes, assignments and submissions
//   - Teacher actions: create classes and assignments, grade, roster import,
//     gradebook export
//   - Student actions: join a class, submit a repository
//   - Repository analysis for any signed-in user, one at a time or as a
//     batch with CSV export
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
