package auction_service

import (
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/network"

	"github.com/dedis/student_20_nft_auctions/auctions"
)

// ServiceName can be used from other packages to refer to this service.
const ServiceName = "NFTAuction"

// We need to register all messages so the network knows how to handle them.
func init() {
	network.RegisterMessages(
		Configure{}, ConfigureReply{},
		MintAsset{}, MintAssetReply{},
		ApproveAsset{}, ApproveAssetReply{},
		MintCoins{}, MintCoinsReply{},
		BalanceOf{}, BalanceOfReply{},
		OwnerOf{}, OwnerOfReply{},
		CreateAuction{}, CreateAuctionReply{},
		PlaceBid{}, PlaceBidReply{},
		BuyNow{}, BuyNowReply{},
		EndAuction{}, EndAuctionReply{},
		CancelAuction{}, CancelAuctionReply{},
		RefundBid{}, RefundBidReply{},
		GetAuction{}, GetAuctionReply{},
		GetAuctionList{}, GetAuctionListReply{},
		GetAuctionsOfSeller{}, GetAuctionsOfSellerReply{},
		GetCurrentAuctionID{}, GetCurrentAuctionIDReply{},
		GetRefund{}, GetRefundReply{},
	)
}

// Configure sets the bidding window used for auctions created afterwards.
type Configure struct {
	DurationSeconds int64
}

type ConfigureReply struct {
}

// MintAsset registers a new asset on the node's registry, the faucet surface
// used by tests and benchmarks (the byzcoin equivalent of coin.mint).
type MintAsset struct {
	Owner   string
	AssetID uint64
}

type MintAssetReply struct {
}

// ApproveAsset authorizes the auction ledger to move the owner's asset.
type ApproveAsset struct {
	Owner   string
	AssetID uint64
}

type ApproveAssetReply struct {
}

// MintCoins credits an account on the node's bank.
type MintCoins struct {
	Account string
	Amount  uint64
}

type MintCoinsReply struct {
}

// BalanceOf queries the bank.
type BalanceOf struct {
	Account string
}

type BalanceOfReply struct {
	Amount uint64
}

// OwnerOf queries asset custody on the registry.
type OwnerOf struct {
	AssetID uint64
}

type OwnerOfReply struct {
	Owner string
}

// CreateAuction lists an approved asset for sale.
type CreateAuction struct {
	Seller      string
	AssetID     uint64
	StartPrice  uint64
	BuyNowPrice uint64
}

type CreateAuctionReply struct {
	AuctionID uint64
}

// PlaceBid places a new highest bid. When a roster is attached, the accepted
// bid is announced to all of its nodes.
type PlaceBid struct {
	Roster    *onet.Roster
	AuctionID uint64
	Bidder    string
	Amount    uint64
}

type PlaceBidReply struct {
}

// BuyNow settles the auction immediately at the buy-now price.
type BuyNow struct {
	AuctionID uint64
	Buyer     string
	Amount    uint64
}

type BuyNowReply struct {
}

// EndAuction closes an auction past its deadline.
type EndAuction struct {
	AuctionID uint64
	Caller    string
}

type EndAuctionReply struct {
	Sold bool
}

// CancelAuction voids an auction before its deadline.
type CancelAuction struct {
	AuctionID uint64
	Caller    string
}

type CancelAuctionReply struct {
}

// RefundBid claims the caller's escrowed refund for the auction.
type RefundBid struct {
	AuctionID uint64
	Caller    string
}

type RefundBidReply struct {
	Amount uint64
}

type GetAuction struct {
	AuctionID uint64
}

type GetAuctionReply struct {
	Auction auctions.AuctionData
}

type GetAuctionList struct {
}

type GetAuctionListReply struct {
	Auctions []auctions.AuctionData
}

type GetAuctionsOfSeller struct {
	Seller string
}

type GetAuctionsOfSellerReply struct {
	Auctions []auctions.AuctionData
}

type GetCurrentAuctionID struct {
}

type GetCurrentAuctionIDReply struct {
	AuctionID uint64
}

type GetRefund struct {
	AuctionID uint64
	Bidder    string
}

type GetRefundReply struct {
	Amount uint64
}
