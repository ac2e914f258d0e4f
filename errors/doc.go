/*
Package errors implements the fixed failure taxonomy of the ledger.

Each failure class is a registered root error with a stable numeric
code, so that callers can handle outcomes programmatically instead of
parsing text. Runtime errors are created by wrapping a root error with
context via Wrap or Wrapf, and are matched with the root's Is method:

	if err := ctrl.Record(...); errors.ErrSupplyExceeded.Is(err) {
		...
	}

Code 1 is reserved for errors that did not originate in this package.
*/
package errors
