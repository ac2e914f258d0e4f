/*
Package govledger defines the common interfaces that tie the ledger
extensions together: principal identities, the logical clock ticks
that mutating operations run at, and the key-value store contracts
that every extension persists through.

State is the external interface of this system. Each extension under
x/ owns a slice of the key space and mutates it only through its own
controller. Cross-extension access always goes through an explicit
capability interface (an audit sink, a cash controller, a proposal
reader), never through shared state, which is what makes the
all-or-nothing execution of compound operations enforceable.
*/
package govledger
