package auctions

// PROTOSTART
// package nftauction;
//
// option java_package = "ch.epfl.dedis.nftauction.proto";
// option java_outer_classname = "NFTAuctionProto";

// Status of an auction. An auction starts ACTIVE and moves exactly once to
// ENDED or CANCELED, never back.
type Status uint32

const (
	ACTIVE Status = 1 + iota
	ENDED
	CANCELED
)

var statuses = [...]string{
	"ACTIVE",
	"ENDED",
	"CANCELED",
}

func (s Status) String() string {
	if s < ACTIVE || s > CANCELED {
		return "UNKNOWN"
	}
	return statuses[s-1]
}

// AuctionData is one listed asset-sale event. ID, Seller, AssetID, StartPrice,
// BuyNowPrice, StartedAt and EndAt are fixed at creation, the rest is mutated
// by the ledger only.
type AuctionData struct {
	ID            uint64
	Seller        string
	AssetID       uint64
	HighestBidder string // empty while no bid was placed
	HighestBid    uint64 // 0 iff HighestBidder is empty
	StartPrice    uint64
	BuyNowPrice   uint64
	StartedAt     int64 // unix seconds
	EndAt         int64 // StartedAt + auction duration
	Status        Status
	Sold          bool // true only if a bidder won the asset
}

// RefundData is one claimable entry of the escrow ledger.
type RefundData struct {
	AuctionID uint64
	Bidder    string
	Amount    uint64
}

// ledgerState is the encodable snapshot of a whole ledger.
type ledgerState struct {
	Auctions []AuctionData
	Refunds  []RefundData
	NextID   uint64
}
