package auction_service

import (
	"github.com/pkg/errors"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
)

// BidAnnounceProtocol spreads one accepted bid over the roster tree. The root
// receives the number of nodes that acknowledged on the Acks channel.
type BidAnnounceProtocol struct {
	*onet.TreeNodeInstance
	Announce BidAnnounce
	Acks     chan int
}

// Check that *BidAnnounceProtocol implements onet.ProtocolInstance
var _ onet.ProtocolInstance = (*BidAnnounceProtocol)(nil)

// NewBidAnnounceProtocol initialises the structure for use in one round
func NewBidAnnounceProtocol(n *onet.TreeNodeInstance) (onet.ProtocolInstance, error) {
	p := &BidAnnounceProtocol{
		TreeNodeInstance: n,
		Acks:             make(chan int),
	}
	for _, handler := range []interface{}{p.HandleAnnounce, p.HandleAck} {
		if err := p.RegisterHandler(handler); err != nil {
			return nil, errors.Wrap(err, "couldn't register handler")
		}
	}
	return p, nil
}

// Start sends the announcement to all children.
func (p *BidAnnounceProtocol) Start() error {
	log.Lvl3("Announcing bid of", p.Announce.Amount, "on auction", p.Announce.AuctionID)
	return p.HandleAnnounce(StructBidAnnounce{p.TreeNode(), p.Announce})
}

// HandleAnnounce is the downward message carrying the accepted bid.
func (p *BidAnnounceProtocol) HandleAnnounce(msg StructBidAnnounce) error {
	p.Announce = msg.BidAnnounce
	log.Lvl3(p.ServerIdentity().Address, "sees bid of", msg.Amount, "on auction", msg.AuctionID)
	if !p.IsLeaf() {
		// If we have children, send the same message to all of them.
		_ = p.SendToChildren(&msg.BidAnnounce)
	} else {
		// If we're the leaf, start to reply.
		_ = p.HandleAck(nil)
	}
	return nil
}

// HandleAck is the upward message counting acknowledging nodes.
func (p *BidAnnounceProtocol) HandleAck(acks []StructAck) error {
	defer p.Done()

	total := 1
	for _, ack := range acks {
		total += ack.Acks
	}

	if !p.IsRoot() {
		log.Lvl3("Sending ack to parent")
		return p.SendTo(p.Parent(), &Ack{total})
	}

	log.Lvl3("Root-node is done, acks:", total)
	p.Acks <- total
	return nil
}
