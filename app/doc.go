/*
Package app wires the extensions into one Ledger facade and gives
every mutating operation its transactional shell.

Each public operation runs inside a single cache-wrap over the root
store: the controllers below validate and stage their writes, and only
a fully successful call chain is flushed into the store. Any failure
anywhere discards every tentative write, so no operation is ever
partially applied. Operations are serialized under a mutex, standing
in for the external total-order sequencer the host would provide.
*/
package app
