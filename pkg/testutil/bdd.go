// Package testutil carries small helpers shared by tests across packages.
package testutil

import "testing"

// Given, When, and Then name the stages of a check-flow scenario so that
// failures read as a sentence (Given a run in flight / When another batch is
// submitted / Then the second caller gets a conflict) without pulling in a
// BDD framework.

func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+desc, fn)
}
