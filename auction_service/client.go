package auction_service

import (
	"go.dedis.ch/cothority/v3"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/onet/v3/network"

	"github.com/dedis/student_20_nft_auctions/auctions"
)

// Client is a structure to communicate with the NFT auction service. All
// calls go to one chosen node, whose ledger answers synchronously.
type Client struct {
	*onet.Client
}

// NewClient instantiates a new auction client.
func NewClient() *Client {
	return &Client{Client: onet.NewClient(cothority.Suite, ServiceName)}
}

// Configure sets the bidding window used for auctions created afterwards.
func (c *Client) Configure(dst *network.ServerIdentity, durationSeconds int64) error {
	return c.SendProtobuf(dst, &Configure{DurationSeconds: durationSeconds}, &ConfigureReply{})
}

// MintAsset registers a new asset under the owner on the node's registry.
func (c *Client) MintAsset(dst *network.ServerIdentity, owner string, assetID uint64) error {
	return c.SendProtobuf(dst, &MintAsset{Owner: owner, AssetID: assetID}, &MintAssetReply{})
}

// ApproveAsset authorizes the ledger to take the owner's asset into custody.
func (c *Client) ApproveAsset(dst *network.ServerIdentity, owner string, assetID uint64) error {
	return c.SendProtobuf(dst, &ApproveAsset{Owner: owner, AssetID: assetID}, &ApproveAssetReply{})
}

// MintCoins credits an account on the node's bank.
func (c *Client) MintCoins(dst *network.ServerIdentity, account string, amount uint64) error {
	return c.SendProtobuf(dst, &MintCoins{Account: account, Amount: amount}, &MintCoinsReply{})
}

// BalanceOf returns the account's balance.
func (c *Client) BalanceOf(dst *network.ServerIdentity, account string) (uint64, error) {
	reply := &BalanceOfReply{}
	if err := c.SendProtobuf(dst, &BalanceOf{Account: account}, reply); err != nil {
		return 0, err
	}
	return reply.Amount, nil
}

// OwnerOf returns the current custodian of the asset.
func (c *Client) OwnerOf(dst *network.ServerIdentity, assetID uint64) (string, error) {
	reply := &OwnerOfReply{}
	if err := c.SendProtobuf(dst, &OwnerOf{AssetID: assetID}, reply); err != nil {
		return "", err
	}
	return reply.Owner, nil
}

// CreateAuction lists an approved asset for sale and returns the new
// auction's id.
func (c *Client) CreateAuction(dst *network.ServerIdentity, seller string, assetID, startPrice, buyNowPrice uint64) (uint64, error) {
	reply := &CreateAuctionReply{}
	err := c.SendProtobuf(dst, &CreateAuction{
		Seller:      seller,
		AssetID:     assetID,
		StartPrice:  startPrice,
		BuyNowPrice: buyNowPrice,
	}, reply)
	if err != nil {
		return 0, err
	}
	return reply.AuctionID, nil
}

// Bid places a new highest bid. The roster, if not nil, receives a
// bid announcement.
func (c *Client) Bid(dst *network.ServerIdentity, r *onet.Roster, auctionID uint64, bidder string, amount uint64) error {
	log.Lvl4("Sending bid to", dst)
	return c.SendProtobuf(dst, &PlaceBid{
		Roster:    r,
		AuctionID: auctionID,
		Bidder:    bidder,
		Amount:    amount,
	}, &PlaceBidReply{})
}

// BuyNow settles the auction immediately at the buy-now price.
func (c *Client) BuyNow(dst *network.ServerIdentity, auctionID uint64, buyer string, amount uint64) error {
	return c.SendProtobuf(dst, &BuyNow{AuctionID: auctionID, Buyer: buyer, Amount: amount}, &BuyNowReply{})
}

// EndAuction closes an auction past its deadline and reports whether the
// asset was sold.
func (c *Client) EndAuction(dst *network.ServerIdentity, auctionID uint64, caller string) (bool, error) {
	reply := &EndAuctionReply{}
	if err := c.SendProtobuf(dst, &EndAuction{AuctionID: auctionID, Caller: caller}, reply); err != nil {
		return false, err
	}
	return reply.Sold, nil
}

// CancelAuction voids an auction before its deadline.
func (c *Client) CancelAuction(dst *network.ServerIdentity, auctionID uint64, caller string) error {
	return c.SendProtobuf(dst, &CancelAuction{AuctionID: auctionID, Caller: caller}, &CancelAuctionReply{})
}

// RefundBid claims the caller's escrowed refund and returns the amount paid
// out.
func (c *Client) RefundBid(dst *network.ServerIdentity, auctionID uint64, caller string) (uint64, error) {
	reply := &RefundBidReply{}
	if err := c.SendProtobuf(dst, &RefundBid{AuctionID: auctionID, Caller: caller}, reply); err != nil {
		return 0, err
	}
	return reply.Amount, nil
}

// GetAuction returns one auction record.
func (c *Client) GetAuction(dst *network.ServerIdentity, auctionID uint64) (auctions.AuctionData, error) {
	reply := &GetAuctionReply{}
	if err := c.SendProtobuf(dst, &GetAuction{AuctionID: auctionID}, reply); err != nil {
		return auctions.AuctionData{}, err
	}
	return reply.Auction, nil
}

// GetAuctionList returns all auctions in creation order.
func (c *Client) GetAuctionList(dst *network.ServerIdentity) ([]auctions.AuctionData, error) {
	reply := &GetAuctionListReply{}
	if err := c.SendProtobuf(dst, &GetAuctionList{}, reply); err != nil {
		return nil, err
	}
	return reply.Auctions, nil
}

// GetAuctionsOfSeller returns the seller's auctions in creation order.
func (c *Client) GetAuctionsOfSeller(dst *network.ServerIdentity, seller string) ([]auctions.AuctionData, error) {
	reply := &GetAuctionsOfSellerReply{}
	if err := c.SendProtobuf(dst, &GetAuctionsOfSeller{Seller: seller}, reply); err != nil {
		return nil, err
	}
	return reply.Auctions, nil
}

// GetCurrentAuctionID returns the id the next auction will get.
func (c *Client) GetCurrentAuctionID(dst *network.ServerIdentity) (uint64, error) {
	reply := &GetCurrentAuctionIDReply{}
	if err := c.SendProtobuf(dst, &GetCurrentAuctionID{}, reply); err != nil {
		return 0, err
	}
	return reply.AuctionID, nil
}

// GetRefund returns the bidder's claimable amount for the auction.
func (c *Client) GetRefund(dst *network.ServerIdentity, auctionID uint64, bidder string) (uint64, error) {
	reply := &GetRefundReply{}
	if err := c.SendProtobuf(dst, &GetRefund{AuctionID: auctionID, Bidder: bidder}, reply); err != nil {
		return 0, err
	}
	return reply.Amount, nil
}
