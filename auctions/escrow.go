package auctions

import "sort"

// The escrow ledger is keyed by (auction, bidder) and only ever credited on
// supersede or cancel, and debited to zero on refund. While a bidder leads an
// auction their bid is held as the pending winning amount, not as a refund.

type escrowKey struct {
	auctionID uint64
	bidder    string
}

func (l *Ledger) credit(auctionID uint64, bidder string, amount uint64) {
	l.escrow[escrowKey{auctionID, bidder}] += amount
}

// take removes and returns the claimable amount, 0 if there is none.
func (l *Ledger) take(auctionID uint64, bidder string) uint64 {
	key := escrowKey{auctionID, bidder}
	amount := l.escrow[key]
	delete(l.escrow, key)
	return amount
}

// GetRefund returns the amount the bidder can currently claim back for the
// auction, the observable counterpart of RefundBid.
func (l *Ledger) GetRefund(auctionID uint64, bidder string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.escrow[escrowKey{auctionID, bidder}]
}

// refunds flattens the escrow map in a deterministic order. Caller must hold
// the lock.
func (l *Ledger) refunds() []RefundData {
	out := make([]RefundData, 0, len(l.escrow))
	for key, amount := range l.escrow {
		out = append(out, RefundData{AuctionID: key.auctionID, Bidder: key.bidder, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AuctionID != out[j].AuctionID {
			return out[i].AuctionID < out[j].AuctionID
		}
		return out[i].Bidder < out[j].Bidder
	})
	return out
}
