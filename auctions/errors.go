package auctions

import "github.com/pkg/errors"

// Validation errors. Every failure is scoped to a single call and leaves the
// ledger untouched; the caller has to re-invoke with corrected input.
var (
	// ErrNoSuchAuction is returned when the auction id was never assigned.
	ErrNoSuchAuction = errors.New("no such auction")

	// ErrNotAuthorized is returned by CreateAuction when the ledger was not
	// pre-approved to move the asset, or the caller does not own it.
	ErrNotAuthorized = errors.New("ledger is not approved to transfer this asset")

	// ErrAssetAlreadyListed is returned when the asset is already custodied
	// by the ledger for another auction.
	ErrAssetAlreadyListed = errors.New("asset is already on auction")

	// ErrInvalidPrice is returned by CreateAuction when the start price is
	// zero or the buy-now price does not exceed it.
	ErrInvalidPrice = errors.New("start price must be positive and below the buy now price")

	// ErrAuctionEnded covers every state-mutating call on an auction that is
	// past its deadline or already in a terminal state.
	ErrAuctionEnded = errors.New("auction has already ended")

	// ErrAuctionNotYetEnded is returned by EndAuction before the deadline.
	ErrAuctionNotYetEnded = errors.New("auction has not ended yet, use CancelAuction instead")

	// ErrSellerCannotBid is returned when the seller bids on their own auction.
	ErrSellerCannotBid = errors.New("you cannot bid on your own auction")

	// ErrNotSeller is returned when EndAuction or CancelAuction is invoked by
	// anybody but the seller.
	ErrNotSeller = errors.New("you are not the seller of this auction")

	// ErrBidTooLow is returned when a bid does not exceed the start price
	// (virgin auction) or the current highest bid.
	ErrBidTooLow = errors.New("there is already a higher or equal bid")

	// ErrBuyNowPriceReached is returned when a bid reaches the buy-now price.
	// Such a caller has to use BuyNow instead.
	ErrBuyNowPriceReached = errors.New("buy now price reached, use BuyNow")

	// ErrIncorrectValue is returned by BuyNow when the attached amount does
	// not equal the buy-now price exactly.
	ErrIncorrectValue = errors.New("attached value must equal the buy now price")

	// ErrNothingToRefund is returned by RefundBid when the caller has no
	// claimable escrow entry for the auction.
	ErrNothingToRefund = errors.New("nothing to refund")
)
