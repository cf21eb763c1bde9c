package allowlist

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrEmptyAllowlist is returned when a root or proof is requested for an
// empty list.
var ErrEmptyAllowlist = errors.New("allowlist is empty")

// ErrNotListed is returned when a proof is requested for an address that is
// not on the list.
var ErrNotListed = errors.New("address is not on the allowlist")

// Leaf hashes an address the way a contract checks
// keccak256(abi.encodePacked(msg.sender)).
func Leaf(addr common.Address) common.Hash {
	return crypto.Keccak256Hash(addr.Bytes())
}

// hashPair hashes two nodes in sorted order.
func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// Tree is a Merkle tree over allowlist leaves. An odd node at any level is
// carried up unchanged.
type Tree struct {
	levels [][]common.Hash
	index  map[common.Address]int
}

// BuildTree builds the tree for the list.
func (l *List) BuildTree() (*Tree, error) {
	if l.Len() == 0 {
		return nil, ErrEmptyAllowlist
	}
	t := &Tree{index: make(map[common.Address]int, l.Len())}
	leaves := make([]common.Hash, l.Len())
	for i, a := range l.addrs {
		addr := common.HexToAddress(a)
		leaves[i] = Leaf(addr)
		t.index[addr] = i
	}
	t.levels = append(t.levels, leaves)

	for level := leaves; len(level) > 1; {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t, nil
}

// Root returns the tree root.
func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Proof returns the sibling hashes proving addr's membership, leaf first.
func (t *Tree) Proof(addr common.Address) ([]common.Hash, error) {
	idx, ok := t.index[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotListed, addr.Hex())
	}
	var proof []common.Hash
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		idx /= 2
	}
	return proof, nil
}

// Root is shorthand for building the tree and returning its root.
func (l *List) Root() (common.Hash, error) {
	t, err := l.BuildTree()
	if err != nil {
		return common.Hash{}, err
	}
	return t.Root(), nil
}

// Verify checks a proof the way OpenZeppelin's MerkleProof.verify does.
func Verify(root common.Hash, addr common.Address, proof []common.Hash) bool {
	h := Leaf(addr)
	for _, p := range proof {
		h = hashPair(h, p)
	}
	return h == root
}
