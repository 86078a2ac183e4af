/*

Package seal defines the boundary to the confidential computation service.

A sealed value is referenced through an opaque handle. The plaintext behind a
handle is never readable from chain state directly. Extensions operate on
sealed values through the Service interface: arithmetic against public
amounts, threshold comparison, access grants and asynchronous reveal
requests. A reveal is answered out of band by the oracle, which observes
reveal requests and submits the authenticated plaintext back to the chain in
a separate transaction.

The package ships BoxService, a KVStore backed development backend that
implements Service without external infrastructure. BoxService provides
storage indirection, not cryptography. It exists so a single node chain can
be run and tested end to end. A production deployment replaces it with an
adapter to a real confidential computation service.

*/
package seal
