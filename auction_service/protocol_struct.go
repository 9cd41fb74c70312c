package auction_service

import (
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/network"
)

// BidAnnounceName can be used from other packages to refer to this protocol.
const BidAnnounceName = "NFTAuctionBidAnnounce"

func init() {
	network.RegisterMessage(BidAnnounce{})
	network.RegisterMessage(Ack{})
	_, _ = onet.GlobalProtocolRegister(BidAnnounceName, NewBidAnnounceProtocol)
}

// BidAnnounce carries an accepted bid down the tree so every node learns the
// new highest bid.
type BidAnnounce struct {
	AuctionID uint64
	Bidder    string
	Amount    uint64
}

// StructBidAnnounce just contains BidAnnounce and the data necessary to
// identify and process the message in the onet framework.
type StructBidAnnounce struct {
	*onet.TreeNode
	BidAnnounce
}

// Ack climbs back up the tree counting the nodes that saw the announcement.
type Ack struct {
	Acks int
}

// StructAck just contains Ack and the data necessary to identify and process
// the message in the onet framework.
type StructAck struct {
	*onet.TreeNode
	Ack
}
