package pow

import "golang.org/x/crypto/sha3"

// Domain tags for the three cSHAKE-family hashes the PoW engine uses. Every
// one of them narrows to a 32-byte digest; what differs is the domain string
// mixed in as the cSHAKE customization, keeping the three hash spaces from
// ever colliding with each other even on identical input bytes.
const (
	DomainBlockHash       = "BlockHash"
	DomainProofOfWorkHash = "ProofOfWorkHash"
	DomainHeavyHash       = "HeavyHash"
)

// domainHash computes cSHAKE256(data) customized with tag, truncated (really:
// squeezed) to 32 bytes. golang.org/x/crypto/sha3's NewCShake256 already
// implements the keyed, domain-separated construction spec.md calls for.
func domainHash(tag string, data []byte) Hash256 {
	h := sha3.NewCShake256(nil, []byte(tag))
	h.Write(data)
	var out Hash256
	h.Read(out[:])
	return out
}

// BlockHash computes the domain-tagged block ID hash of already-serialized
// header bytes (nonce included).
func BlockHash(serialized []byte) Hash256 {
	return domainHash(DomainBlockHash, serialized)
}

// ProofOfWorkHash computes the pre-PoW hash of already-serialized header
// bytes (nonce excluded).
func ProofOfWorkHash(serialized []byte) Hash256 {
	return domainHash(DomainProofOfWorkHash, serialized)
}

// HeavyHash computes the final PoW hash of the matrix-mixed digest.
func HeavyHash(mixed Hash256) Hash256 {
	return domainHash(DomainHeavyHash, mixed[:])
}
