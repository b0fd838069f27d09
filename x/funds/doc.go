/*
Package funds tracks token balances for addresses.

It provides a Controller that moves and issues funds, used by the
governance extension as the settlement layer for treasury transfers,
deposits and withdrawals.
*/
package funds
