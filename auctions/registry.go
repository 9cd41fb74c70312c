package auctions

import (
	"sync"

	"github.com/pkg/errors"
)

// AssetRegistry is the custody boundary of the minting contract. The ledger
// never creates assets, it only queries ownership and moves custody with a
// pre-authorized transfer.
type AssetRegistry interface {
	OwnerOf(assetID uint64) (string, error)
	IsApprovedForTransfer(assetID uint64, operator string) (bool, error)
	TransferCustody(from, to string, assetID uint64) error
}

// CoinBank moves bid funds between accounts. Bids are pulled from the bidder
// into the ledger account, refunds and settlements are pushed back out as the
// last step of a transition.
type CoinBank interface {
	Transfer(from, to string, amount uint64) error
}

// NaiveRegistry is an in-memory AssetRegistry, the stand-in collaborator used
// by the service, the tests and the simulation.
type NaiveRegistry struct {
	sync.Mutex
	owners    map[uint64]string
	approvals map[uint64]string // assetID -> approved operator
}

// NewNaiveRegistry returns an empty registry.
func NewNaiveRegistry() *NaiveRegistry {
	return &NaiveRegistry{
		owners:    make(map[uint64]string),
		approvals: make(map[uint64]string),
	}
}

// Mint registers a new asset under the given owner.
func (r *NaiveRegistry) Mint(owner string, assetID uint64) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.owners[assetID]; ok {
		return errors.New("asset already minted")
	}
	r.owners[assetID] = owner
	return nil
}

// Approve lets the current owner authorize one operator to move the asset.
// Any custody transfer clears the approval again.
func (r *NaiveRegistry) Approve(owner, operator string, assetID uint64) error {
	r.Lock()
	defer r.Unlock()
	if r.owners[assetID] != owner {
		return errors.New("only the owner can approve an operator")
	}
	r.approvals[assetID] = operator
	return nil
}

func (r *NaiveRegistry) OwnerOf(assetID uint64) (string, error) {
	r.Lock()
	defer r.Unlock()
	owner, ok := r.owners[assetID]
	if !ok {
		return "", errors.New("no such asset")
	}
	return owner, nil
}

func (r *NaiveRegistry) IsApprovedForTransfer(assetID uint64, operator string) (bool, error) {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.owners[assetID]; !ok {
		return false, errors.New("no such asset")
	}
	return r.approvals[assetID] == operator, nil
}

func (r *NaiveRegistry) TransferCustody(from, to string, assetID uint64) error {
	r.Lock()
	defer r.Unlock()
	owner, ok := r.owners[assetID]
	if !ok {
		return errors.New("no such asset")
	}
	if owner != from {
		return errors.New("transfer from incorrect owner")
	}
	r.owners[assetID] = to
	delete(r.approvals, assetID)
	return nil
}

// MemBank is an in-memory CoinBank keeping one integral balance per account,
// the coin-contract stand-in used by the service, the tests and the
// simulation.
type MemBank struct {
	sync.Mutex
	balances map[string]uint64
}

// NewMemBank returns an empty bank.
func NewMemBank() *MemBank {
	return &MemBank{balances: make(map[string]uint64)}
}

// Mint credits an account out of thin air.
func (b *MemBank) Mint(account string, amount uint64) {
	b.Lock()
	defer b.Unlock()
	b.balances[account] += amount
}

// BalanceOf returns the current balance of an account.
func (b *MemBank) BalanceOf(account string) uint64 {
	b.Lock()
	defer b.Unlock()
	return b.balances[account]
}

func (b *MemBank) Transfer(from, to string, amount uint64) error {
	b.Lock()
	defer b.Unlock()
	if b.balances[from] < amount {
		return errors.New("not enough coins")
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}
