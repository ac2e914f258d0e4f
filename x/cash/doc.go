/*
Package cash implements the minimal fungible-balance ledger the core
depends on: mint into an account, move between two accounts
atomically, and query a balance.

The contract held by every caller is that no transfer fails silently:
either the balance change happens exactly as requested or the calling
operation aborts with an error and its cache-wrap discards every
tentative write.
*/
package cash
