/*
Package audit implements the append-only audit trail.

Every state-changing operation of the ledger appends an entry here
strictly before it reports success. Entries are immutable, never
deleted, and carry strictly increasing ids starting at 0. Other
extensions depend on this package only through the Sink capability,
so tests can swap in a sink that fails to prove the all-or-nothing
behavior of their callers.
*/
package audit
