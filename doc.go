/*
Package treasury defines the common interfaces that tie the treasury
module together: stores, messages, handlers, addresses, and the context
helpers used to pass block information between them.

The actual governance logic lives in x/gov, the asset ledger in x/funds.
This package is intentionally small; anything with real behavior belongs
in a subpackage.
*/
package treasury
