package auctions

// The auction directory keeps read-optimized indices over the records: all
// auctions in creation order and auctions per seller. It is appended to by
// CreateAuction and never shrinks, terminal auctions stay queryable forever.

// index registers a record in the directory. Caller must hold the lock.
func (l *Ledger) index(auct *AuctionData) {
	l.order = append(l.order, auct.ID)
	l.bySeller[auct.Seller] = append(l.bySeller[auct.Seller], auct.ID)
}

// GetAuction returns a copy of one auction record.
func (l *Ledger) GetAuction(auctionID uint64) (AuctionData, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	auct, ok := l.auctions[auctionID]
	if !ok {
		return AuctionData{}, ErrNoSuchAuction
	}
	return *auct, nil
}

// GetAuctionList returns copies of all auction records in creation order.
func (l *Ledger) GetAuctionList() []AuctionData {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuctionData, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.auctions[id])
	}
	return out
}

// GetAuctionsOfSeller returns copies of the seller's auctions in creation
// order.
func (l *Ledger) GetAuctionsOfSeller(seller string) []AuctionData {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := l.bySeller[seller]
	out := make([]AuctionData, 0, len(ids))
	for _, id := range ids {
		out = append(out, *l.auctions[id])
	}
	return out
}

// GetCurrentAuctionID returns the id the next auction will get, which is also
// the number of auctions ever created.
func (l *Ledger) GetCurrentAuctionID() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextID
}
