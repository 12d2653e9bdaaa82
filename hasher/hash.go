// Package hasher computes the content hash that freezes drafts and addresses
// network messages.
//
// A hash is taken over a canonical field set: every field is rendered to a
// string, overrides replace or add fields in the order given, the pairs are
// sorted by field name, RLP encoded and hashed with Keccak-256. Hashing never
// performs I/O and never mutates its input.
package hasher

import (
	"encoding/hex"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Fields maps a field name to its canonical string value.
type Fields map[string]string

// Override replaces the value of field To before hashing.
type Override struct {
	To    string
	Value string
}

type Pair struct {
	Key   string
	Value string
}

// Canonical returns the sorted field list that Hash encodes.
func Canonical(fields Fields, overrides ...Override) []Pair {
	merged := make(map[string]string, len(fields)+len(overrides))
	for k, v := range fields {
		merged[k] = v
	}
	for _, o := range overrides {
		merged[o.To] = o.Value
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{Key: k, Value: merged[k]}
	}
	return pairs
}

// Hash returns the hex encoded Keccak-256 digest of the canonical fields.
func Hash(fields Fields, overrides ...Override) string {
	dat, err := rlp.EncodeToBytes(Canonical(fields, overrides...))
	if err != nil {
		// string pairs always encode
		panic(err)
	}
	return hex.EncodeToString(crypto.Keccak256(dat))
}

// HashChild binds a child to its parent by overriding parentField with the
// parent hash.
func HashChild(fields Fields, parentField string, parentHash string) string {
	return Hash(fields, Override{To: parentField, Value: parentHash})
}

// VerifyChild reports whether childHash was derived from parentHash.
func VerifyChild(fields Fields, parentField string, parentHash string, childHash string) bool {
	return childHash != "" && HashChild(fields, parentField, parentHash) == childHash
}
