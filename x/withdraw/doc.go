/*
Package withdraw implements multi party withdrawal authorization for vault
accounts.

A withdrawal is a three step protocol. The owner opens a request, which
schedules a confidential reveal of the vault's co-signer identities and
blocks the vault until it is resolved. An off chain oracle picks up the
reveal, and submits the plaintext identities back with a signed callback.
Processing the callback compares the request amount against the withdrawal
limit each co-signer declared: the request is authorized only when all
three limits exist, are not expired and cover the amount. The limits
involved are removed no matter the outcome, so every authorization round
requires fresh approvals. Finally the owner executes an authorized request,
which moves the funds exactly once.
*/
package withdraw
