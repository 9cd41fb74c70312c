package auction_service

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/onet/v3/network"

	"github.com/dedis/student_20_nft_auctions/auctions"
)

// LedgerAccount is the custody and escrow address of the auction ledger on
// every node.
const LedgerAccount = "nftauction:escrow"

// Used for tests
var auctionServiceID onet.ServiceID

var storageID = []byte("main")

func init() {
	var err error
	auctionServiceID, err = onet.RegisterNewService(ServiceName, newService)
	log.ErrFatal(err)
	network.RegisterMessage(&storage{})
}

// Service fronts one auction ledger together with its in-memory registry and
// bank collaborators. Every handler runs a single ledger operation to
// completion; the ledger's own lock serializes them.
type Service struct {
	*onet.ServiceProcessor
	registry *auctions.NaiveRegistry
	bank     *auctions.MemBank
	ledger   *auctions.Ledger
	storage  *storage
}

// storage is saved and loaded through onet's context, carrying the
// protobuf-encoded ledger snapshot across restarts.
type storage struct {
	Snapshot []byte
	sync.Mutex
}

// Configure sets the bidding window for auctions created afterwards.
func (s *Service) Configure(req *Configure) (*ConfigureReply, error) {
	if req.DurationSeconds <= 0 {
		return nil, errors.New("duration must be positive")
	}
	s.ledger.SetDuration(time.Duration(req.DurationSeconds) * time.Second)
	return &ConfigureReply{}, nil
}

// MintAsset registers a new asset on this node's registry.
func (s *Service) MintAsset(req *MintAsset) (*MintAssetReply, error) {
	if err := s.registry.Mint(req.Owner, req.AssetID); err != nil {
		return nil, err
	}
	return &MintAssetReply{}, nil
}

// ApproveAsset authorizes the ledger to take the asset into custody.
func (s *Service) ApproveAsset(req *ApproveAsset) (*ApproveAssetReply, error) {
	if err := s.registry.Approve(req.Owner, LedgerAccount, req.AssetID); err != nil {
		return nil, err
	}
	return &ApproveAssetReply{}, nil
}

// MintCoins credits an account on this node's bank.
func (s *Service) MintCoins(req *MintCoins) (*MintCoinsReply, error) {
	s.bank.Mint(req.Account, req.Amount)
	return &MintCoinsReply{}, nil
}

// BalanceOf returns an account balance.
func (s *Service) BalanceOf(req *BalanceOf) (*BalanceOfReply, error) {
	return &BalanceOfReply{Amount: s.bank.BalanceOf(req.Account)}, nil
}

// OwnerOf returns the current custodian of an asset.
func (s *Service) OwnerOf(req *OwnerOf) (*OwnerOfReply, error) {
	owner, err := s.registry.OwnerOf(req.AssetID)
	if err != nil {
		return nil, err
	}
	return &OwnerOfReply{Owner: owner}, nil
}

// CreateAuction lists an approved asset for sale.
func (s *Service) CreateAuction(req *CreateAuction) (*CreateAuctionReply, error) {
	id, err := s.ledger.CreateAuction(req.Seller, req.AssetID, req.StartPrice, req.BuyNowPrice)
	if err != nil {
		return nil, err
	}
	s.save()
	log.Lvl2("Created auction", id, "for asset", req.AssetID)
	return &CreateAuctionReply{AuctionID: id}, nil
}

// PlaceBid places a new highest bid and announces it to the roster, if one
// was attached.
func (s *Service) PlaceBid(req *PlaceBid) (*PlaceBidReply, error) {
	if err := s.ledger.Bid(req.Bidder, req.AuctionID, req.Amount); err != nil {
		return nil, err
	}
	s.save()
	if req.Roster != nil {
		s.announce(req.Roster, BidAnnounce{
			AuctionID: req.AuctionID,
			Bidder:    req.Bidder,
			Amount:    req.Amount,
		})
	}
	return &PlaceBidReply{}, nil
}

// BuyNow settles the auction immediately at the buy-now price.
func (s *Service) BuyNow(req *BuyNow) (*BuyNowReply, error) {
	if err := s.ledger.BuyNow(req.Buyer, req.AuctionID, req.Amount); err != nil {
		return nil, err
	}
	s.save()
	log.Lvl2("Auction", req.AuctionID, "settled by buy now")
	return &BuyNowReply{}, nil
}

// EndAuction closes an auction past its deadline.
func (s *Service) EndAuction(req *EndAuction) (*EndAuctionReply, error) {
	if err := s.ledger.EndAuction(req.Caller, req.AuctionID); err != nil {
		return nil, err
	}
	s.save()
	auct, err := s.ledger.GetAuction(req.AuctionID)
	if err != nil {
		return nil, err
	}
	return &EndAuctionReply{Sold: auct.Sold}, nil
}

// CancelAuction voids an auction before its deadline.
func (s *Service) CancelAuction(req *CancelAuction) (*CancelAuctionReply, error) {
	if err := s.ledger.CancelAuction(req.Caller, req.AuctionID); err != nil {
		return nil, err
	}
	s.save()
	return &CancelAuctionReply{}, nil
}

// RefundBid claims the caller's escrowed refund.
func (s *Service) RefundBid(req *RefundBid) (*RefundBidReply, error) {
	amount, err := s.ledger.RefundBid(req.Caller, req.AuctionID)
	if err != nil {
		return nil, err
	}
	s.save()
	return &RefundBidReply{Amount: amount}, nil
}

// GetAuction returns one auction record.
func (s *Service) GetAuction(req *GetAuction) (*GetAuctionReply, error) {
	auct, err := s.ledger.GetAuction(req.AuctionID)
	if err != nil {
		return nil, err
	}
	return &GetAuctionReply{Auction: auct}, nil
}

// GetAuctionList returns all auctions in creation order.
func (s *Service) GetAuctionList(req *GetAuctionList) (*GetAuctionListReply, error) {
	return &GetAuctionListReply{Auctions: s.ledger.GetAuctionList()}, nil
}

// GetAuctionsOfSeller returns the seller's auctions in creation order.
func (s *Service) GetAuctionsOfSeller(req *GetAuctionsOfSeller) (*GetAuctionsOfSellerReply, error) {
	return &GetAuctionsOfSellerReply{Auctions: s.ledger.GetAuctionsOfSeller(req.Seller)}, nil
}

// GetCurrentAuctionID returns the id the next auction will get.
func (s *Service) GetCurrentAuctionID(req *GetCurrentAuctionID) (*GetCurrentAuctionIDReply, error) {
	return &GetCurrentAuctionIDReply{AuctionID: s.ledger.GetCurrentAuctionID()}, nil
}

// GetRefund returns the bidder's claimable amount for the auction.
func (s *Service) GetRefund(req *GetRefund) (*GetRefundReply, error) {
	return &GetRefundReply{Amount: s.ledger.GetRefund(req.AuctionID, req.Bidder)}, nil
}

// announce fires the bid-announcement protocol towards the roster and logs
// the ack count when it is done.
func (s *Service) announce(roster *onet.Roster, bid BidAnnounce) {
	tree := roster.GenerateNaryTreeWithRoot(2, s.ServerIdentity())
	if tree == nil {
		log.Error("could not generate announcement tree")
		return
	}
	pi, err := s.CreateProtocol(BidAnnounceName, tree)
	if err != nil {
		log.Error("could not create announcement protocol:", err)
		return
	}
	proto := pi.(*BidAnnounceProtocol)
	proto.Announce = bid
	go func() {
		if err := proto.Start(); err != nil {
			log.Error("announcing bid:", err)
			return
		}
		acks := <-proto.Acks
		log.Lvl3("Bid on auction", bid.AuctionID, "announced to", acks, "nodes")
	}()
}

// save stores a fresh ledger snapshot through the onet context.
func (s *Service) save() {
	s.storage.Lock()
	defer s.storage.Unlock()
	buf, err := s.ledger.Snapshot()
	if err != nil {
		log.Error("could not snapshot ledger:", err)
		return
	}
	s.storage.Snapshot = buf
	if err := s.Save(storageID, s.storage); err != nil {
		log.Error("could not save ledger:", err)
	}
}

// tryLoad restores the ledger from a previously saved snapshot, if any.
func (s *Service) tryLoad() error {
	s.storage = &storage{}
	msg, err := s.Load(storageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}
	var ok bool
	s.storage, ok = msg.(*storage)
	if !ok {
		return errors.New("data of wrong type")
	}
	if len(s.storage.Snapshot) == 0 {
		return nil
	}
	return s.ledger.Restore(s.storage.Snapshot)
}

// newService receives the context that holds information about the node it's
// running on. Saving and loading is done through the context: in memory for
// tests and simulations, on disk for real deployments.
func newService(c *onet.Context) (onet.Service, error) {
	registry := auctions.NewNaiveRegistry()
	bank := auctions.NewMemBank()
	s := &Service{
		ServiceProcessor: onet.NewServiceProcessor(c),
		registry:         registry,
		bank:             bank,
		ledger:           auctions.NewLedger(registry, bank, LedgerAccount),
	}
	if err := s.RegisterHandlers(
		s.Configure, s.MintAsset, s.ApproveAsset, s.MintCoins, s.BalanceOf,
		s.OwnerOf, s.CreateAuction, s.PlaceBid, s.BuyNow, s.EndAuction,
		s.CancelAuction, s.RefundBid, s.GetAuction, s.GetAuctionList,
		s.GetAuctionsOfSeller, s.GetCurrentAuctionID, s.GetRefund,
	); err != nil {
		return nil, errors.Wrap(err, "couldn't register messages")
	}
	if err := s.tryLoad(); err != nil {
		return nil, err
	}
	return s, nil
}
