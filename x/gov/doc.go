/*
Package gov implements a multi-signature treasury.

A fixed set of authorized signers controls a shared fund. Any fund
movement or change to the signer set requires collective approval:
a signer submits a typed proposal, other signers cast votes, and once
the count of approving votes reaches the signature threshold any
signer may trigger execution. Execution applies the proposal effect
exactly once, atomically with marking the proposal executed.

Signers are never deleted, only deactivated. Proposals expire after a
fixed number of blocks and expiration is checked lazily on use, there
is no background sweep.

An administrative emergency mode blocks creation of new proposals and
unlocks a direct withdrawal path for the admin. The withdrawal is an
intentional break-glass bypass of the multi-signature scheme, meant
for crisis fund recovery only.
*/
package gov
