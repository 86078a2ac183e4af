/*
Package vault implements the account registry and the confidential balance
ledger.

Registering a vault binds the transaction signer to exactly three sealed
co-signer identities. The identities never appear on chain in plaintext,
the account keeps only their seal handles. Funds deposited into a vault are
held on a per owner custody address controlled by this extension, while the
balance amount itself is tracked as a sealed value. The withdraw extension
drives fund movement out of the custody through the Controller interface.
*/
package vault
