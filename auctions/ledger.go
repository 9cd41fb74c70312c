package auctions

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.dedis.ch/protobuf"
)

// DefaultAuctionDuration is the fixed bidding window of a new auction.
const DefaultAuctionDuration = 7 * 24 * time.Hour

// Ledger owns every auction record, the escrow balances and the directory
// indices. All operations run under one mutex, start to completion, so no
// caller ever observes a half-applied transition. There is no timer: EndAt is
// a passive deadline checked by whichever caller invokes Bid, BuyNow,
// EndAuction or CancelAuction next.
//
// Custody and funds cross the ledger boundary through the AssetRegistry and
// the CoinBank. Acquisitions (pulling a bid, pulling the asset) happen before
// any record is touched so a failure leaves the ledger unmodified; payouts
// (refunds, settlement, custody return) happen after all record mutation.
type Ledger struct {
	mu       sync.Mutex
	registry AssetRegistry
	bank     CoinBank
	account  string // custody and escrow address of the ledger itself

	auctions map[uint64]*AuctionData
	escrow   map[escrowKey]uint64
	order    []uint64            // auction ids in creation order
	bySeller map[string][]uint64 // seller -> auction ids in creation order
	nextID   uint64

	duration time.Duration
	now      func() int64
}

// NewLedger returns an empty ledger custodying assets and funds under the
// given account address.
func NewLedger(registry AssetRegistry, bank CoinBank, account string) *Ledger {
	return &Ledger{
		registry: registry,
		bank:     bank,
		account:  account,
		auctions: make(map[uint64]*AuctionData),
		escrow:   make(map[escrowKey]uint64),
		bySeller: make(map[string][]uint64),
		duration: DefaultAuctionDuration,
		now:      func() int64 { return time.Now().Unix() },
	}
}

// SetDuration changes the bidding window for auctions created afterwards.
// Running auctions keep their deadline.
func (l *Ledger) SetDuration(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.duration = d
}

// Account returns the custody address of the ledger.
func (l *Ledger) Account() string {
	return l.account
}

// CreateAuction lists an asset for sale and moves its custody from the seller
// to the ledger. The seller must have approved the ledger on the registry
// beforehand. Returns the id of the new auction.
func (l *Ledger) CreateAuction(seller string, assetID, startPrice, buyNowPrice uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if startPrice == 0 || buyNowPrice <= startPrice {
		return 0, ErrInvalidPrice
	}
	owner, err := l.registry.OwnerOf(assetID)
	if err != nil {
		return 0, errors.Wrap(err, "querying asset owner")
	}
	if owner == l.account {
		return 0, ErrAssetAlreadyListed
	}
	approved, err := l.registry.IsApprovedForTransfer(assetID, l.account)
	if err != nil {
		return 0, errors.Wrap(err, "querying asset approval")
	}
	if owner != seller || !approved {
		return 0, ErrNotAuthorized
	}
	if err := l.registry.TransferCustody(seller, l.account, assetID); err != nil {
		return 0, errors.Wrap(err, "taking asset into custody")
	}

	now := l.now()
	auct := &AuctionData{
		ID:          l.nextID,
		Seller:      seller,
		AssetID:     assetID,
		StartPrice:  startPrice,
		BuyNowPrice: buyNowPrice,
		StartedAt:   now,
		EndAt:       now + int64(l.duration/time.Second),
		Status:      ACTIVE,
	}
	l.auctions[auct.ID] = auct
	l.index(auct)
	l.nextID++
	return auct.ID, nil
}

// Bid places a new highest bid of the given amount, pulled from the bidder's
// account into escrow. A superseded highest bidder gets their full previous
// bid credited as a claimable refund before the call returns.
func (l *Ledger) Bid(bidder string, auctionID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	auct, ok := l.auctions[auctionID]
	if !ok {
		return ErrNoSuchAuction
	}
	if auct.Status != ACTIVE || l.now() >= auct.EndAt {
		return ErrAuctionEnded
	}
	if bidder == auct.Seller {
		return ErrSellerCannotBid
	}
	if amount >= auct.BuyNowPrice {
		return ErrBuyNowPriceReached
	}
	if auct.HighestBidder == "" {
		if amount <= auct.StartPrice {
			return ErrBidTooLow
		}
	} else if amount <= auct.HighestBid {
		return ErrBidTooLow
	}

	if err := l.bank.Transfer(bidder, l.account, amount); err != nil {
		return errors.Wrap(err, "escrowing bid")
	}
	if auct.HighestBidder != "" {
		l.credit(auctionID, auct.HighestBidder, auct.HighestBid)
	}
	auct.HighestBidder = bidder
	auct.HighestBid = amount
	return nil
}

// BuyNow settles the auction immediately at the buy-now price. The attached
// amount must equal the buy-now price exactly. The asset goes to the buyer and
// the proceeds to the seller; a previously leading bid stays claimable as a
// refund from the Bid call that superseded it.
func (l *Ledger) BuyNow(buyer string, auctionID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	auct, ok := l.auctions[auctionID]
	if !ok {
		return ErrNoSuchAuction
	}
	if auct.Status != ACTIVE || l.now() >= auct.EndAt {
		return ErrAuctionEnded
	}
	if buyer == auct.Seller {
		return ErrSellerCannotBid
	}
	if amount != auct.BuyNowPrice {
		return ErrIncorrectValue
	}

	if err := l.bank.Transfer(buyer, l.account, amount); err != nil {
		return errors.Wrap(err, "collecting buy now payment")
	}
	if auct.HighestBidder != "" {
		l.credit(auctionID, auct.HighestBidder, auct.HighestBid)
	}
	auct.HighestBidder = buyer
	auct.HighestBid = amount
	auct.Status = ENDED
	auct.Sold = true

	// All record mutation is done, external payouts come last.
	if err := l.registry.TransferCustody(l.account, buyer, auct.AssetID); err != nil {
		return errors.Wrap(err, "transferring asset to buyer")
	}
	if err := l.bank.Transfer(l.account, auct.Seller, amount); err != nil {
		return errors.Wrap(err, "paying seller")
	}
	return nil
}

// EndAuction closes an auction whose deadline has passed. Only the seller may
// call it. With a standing bid the asset goes to the highest bidder and the
// bid amount to the seller; without bids the asset returns to the seller.
func (l *Ledger) EndAuction(caller string, auctionID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	auct, ok := l.auctions[auctionID]
	if !ok {
		return ErrNoSuchAuction
	}
	if auct.Status != ACTIVE {
		return ErrAuctionEnded
	}
	if caller != auct.Seller {
		return ErrNotSeller
	}
	if l.now() < auct.EndAt {
		return ErrAuctionNotYetEnded
	}

	auct.Status = ENDED
	if auct.HighestBidder == "" {
		if err := l.registry.TransferCustody(l.account, auct.Seller, auct.AssetID); err != nil {
			return errors.Wrap(err, "returning asset to seller")
		}
		return nil
	}
	auct.Sold = true
	if err := l.registry.TransferCustody(l.account, auct.HighestBidder, auct.AssetID); err != nil {
		return errors.Wrap(err, "transferring asset to winner")
	}
	if err := l.bank.Transfer(l.account, auct.Seller, auct.HighestBid); err != nil {
		return errors.Wrap(err, "paying seller")
	}
	return nil
}

// CancelAuction voids an auction before its deadline. Only the seller may call
// it. The asset returns to the seller and a standing highest bid becomes a
// claimable refund.
func (l *Ledger) CancelAuction(caller string, auctionID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	auct, ok := l.auctions[auctionID]
	if !ok {
		return ErrNoSuchAuction
	}
	if auct.Status != ACTIVE {
		return ErrAuctionEnded
	}
	if caller != auct.Seller {
		return ErrNotSeller
	}
	if l.now() >= auct.EndAt {
		return ErrAuctionEnded
	}

	auct.Status = CANCELED
	if auct.HighestBidder != "" {
		l.credit(auctionID, auct.HighestBidder, auct.HighestBid)
		auct.HighestBidder = ""
		auct.HighestBid = 0
	}
	if err := l.registry.TransferCustody(l.account, auct.Seller, auct.AssetID); err != nil {
		return errors.Wrap(err, "returning asset to seller")
	}
	return nil
}

// RefundBid pays the caller's claimable escrow entry for the auction back out
// and zeroes it. The entry is zeroed before the funds move, so a re-entering
// recipient finds nothing left to claim; a failed payout puts it back.
func (l *Ledger) RefundBid(caller string, auctionID uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	amount := l.take(auctionID, caller)
	if amount == 0 {
		return 0, ErrNothingToRefund
	}
	if err := l.bank.Transfer(l.account, caller, amount); err != nil {
		l.credit(auctionID, caller, amount)
		return 0, errors.Wrap(err, "paying refund")
	}
	return amount, nil
}

// Snapshot encodes the committed ledger state.
func (l *Ledger) Snapshot() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := ledgerState{NextID: l.nextID}
	for _, id := range l.order {
		state.Auctions = append(state.Auctions, *l.auctions[id])
	}
	state.Refunds = l.refunds()
	return protobuf.Encode(&state)
}

// Restore replaces the ledger state with a decoded snapshot, rebuilding the
// directory indices.
func (l *Ledger) Restore(buf []byte) error {
	state := ledgerState{}
	if err := protobuf.Decode(buf, &state); err != nil {
		return errors.Wrap(err, "decoding ledger snapshot")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.auctions = make(map[uint64]*AuctionData)
	l.escrow = make(map[escrowKey]uint64)
	l.order = nil
	l.bySeller = make(map[string][]uint64)
	for i := range state.Auctions {
		auct := state.Auctions[i]
		l.auctions[auct.ID] = &auct
		l.index(&auct)
	}
	for _, ref := range state.Refunds {
		l.credit(ref.AuctionID, ref.Bidder, ref.Amount)
	}
	l.nextID = state.NextID
	return nil
}
