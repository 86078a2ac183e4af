package withdraw

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/crypto"
)

// revealDomain separates reveal callback signatures from any other payload
// the oracle key might sign.
var revealDomain = []byte("trivault/withdraw/reveal")

// RevealSignBytes returns the payload the oracle signs when answering a
// reveal request: the domain separator, the correlation id and the revealed
// identities in request order.
func RevealSignBytes(correlationID []byte, signers []weave.Address) []byte {
	raw := make([]byte, 0, len(revealDomain)+len(correlationID)+len(signers)*weave.AddressLength)
	raw = append(raw, revealDomain...)
	raw = append(raw, correlationID...)
	for _, s := range signers {
		raw = append(raw, s...)
	}
	return raw
}

// SignReveal produces the callback proof for the given reveal. It is used
// by the oracle and by tests.
func SignReveal(key *crypto.PrivateKey, correlationID []byte, signers []weave.Address) ([]byte, error) {
	sig, err := key.Sign(RevealSignBytes(correlationID, signers))
	if err != nil {
		return nil, err
	}
	return sig.GetEd25519(), nil
}

func verifyProof(pubkey []byte, msg *SubmitRevealMsg) bool {
	pub := crypto.PublicKey{
		Pub: &crypto.PublicKey_Ed25519{Ed25519: pubkey},
	}
	sig := crypto.Signature{
		Sig: &crypto.Signature_Ed25519{Ed25519: msg.Proof},
	}
	return pub.Verify(RevealSignBytes(msg.CorrelationId, msg.Signers), &sig)
}
