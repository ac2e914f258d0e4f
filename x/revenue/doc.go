/*
Package revenue implements the attested revenue ledger.

The single trusted attestor records externally attested revenue
events. Each recording is replay-protected by the (attestor, source
id) submission key, capped by the configured supply ceiling, minted
into the treasury account, and locked for a cooling-off period before
the recorder may release the funds to a recipient.

Every recording appends to the audit trail strictly before it
reports success. Whether a release appends as well is a configuration
choice: the reference behavior does not audit releases, and this
package keeps that default rather than silently changing it.
*/
package revenue
