// Package assert provides invariant checks that return errors instead of panicking.
//
// A failed assertion is logged, recorded on the active span as an
// "assertion.failed" event and counted in assertion_failed_total.
//
//	a := assert.New(ctx, logger, "mesh", "modify")
//	if err := a.That(ctx, assert.ValidIndex(i, n), "vertex index out of range", "index", i); err != nil {
//	    return err
//	}
package assert
