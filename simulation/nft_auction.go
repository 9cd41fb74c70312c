package main

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"go.dedis.ch/cothority/v3/darc"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/onet/v3/simul/monitor"

	"github.com/dedis/student_20_nft_auctions/auction_service"
)

func init() {
	onet.SimulationRegister("NFTAuction", NewSimulationNFTAuction)
}

// SimulationNFTAuction holds the state of the simulation: each round mints
// one asset, runs a full English auction over it with Bidders*Bids bids,
// ends it past the deadline and claims all refunds.
type SimulationNFTAuction struct {
	onet.SimulationBFTree
	Bidders     int
	Bids        int
	DurationSec int64
}

// NewSimulationNFTAuction returns the new simulation, where all fields are
// initialised using the config-file
func NewSimulationNFTAuction(config string) (onet.Simulation, error) {
	es := &SimulationNFTAuction{}
	_, err := toml.Decode(config, es)
	if err != nil {
		return nil, err
	}
	return es, nil
}

// Setup creates the tree used for that simulation
func (s *SimulationNFTAuction) Setup(dir string, hosts []string) (
	*onet.SimulationConfig, error) {
	sc := &onet.SimulationConfig{}
	s.CreateRoster(sc, hosts, 2000)
	err := s.CreateTree(sc)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Node can be used to initialize each node before it will be run
// by the server. Here we call the 'Node'-method of the
// SimulationBFTree structure which will load the roster- and the
// tree-structure to speed up the first round.
func (s *SimulationNFTAuction) Node(config *onet.SimulationConfig) error {
	index, _ := config.Roster.Search(config.Server.ServerIdentity.ID)
	if index < 0 {
		log.Fatal("Didn't find this node in roster")
	}
	log.Lvl3("Initializing node-index", index)
	return s.SimulationBFTree.Node(config)
}

// Run is used on the destination machines and runs a number of rounds
func (s *SimulationNFTAuction) Run(config *onet.SimulationConfig) error {
	size := config.Tree.Size()
	log.Lvl2("Size is:", size, "rounds:", s.Rounds)

	c := auction_service.NewClient()
	dst := config.Roster.List[0]

	if err := c.Configure(dst, s.DurationSec); err != nil {
		return errors.Wrap(err, "configuring auction duration")
	}

	seller := darc.NewSignerEd25519(nil, nil).Identity().String()
	bidders := make([]string, s.Bidders)
	for i := range bidders {
		bidders[i] = darc.NewSignerEd25519(nil, nil).Identity().String()
		if err := c.MintCoins(dst, bidders[i], 1000000); err != nil {
			return errors.Wrap(err, "funding bidder")
		}
	}

	// Bids increase globally so every bid is accepted.
	bidAmount := uint64(1)
	expectedProceeds := uint64(0)

	for round := 0; round < s.Rounds; round++ {
		log.Lvl1("Starting round", round)
		roundM := monitor.NewTimeMeasure("round")

		assetID := uint64(round + 1)
		if err := c.MintAsset(dst, seller, assetID); err != nil {
			return errors.Wrap(err, "minting asset")
		}
		if err := c.ApproveAsset(dst, seller, assetID); err != nil {
			return errors.Wrap(err, "approving asset")
		}

		buyNow := bidAmount + uint64(s.Bidders*s.Bids) + 1000
		create := monitor.NewTimeMeasure("create")
		auctionID, err := c.CreateAuction(dst, seller, assetID, 1, buyNow)
		if err != nil {
			return errors.Wrap(err, "creating auction")
		}
		create.Record()

		send := monitor.NewTimeMeasure("send")
		winner := ""
		winning := uint64(0)
		for loop1 := 0; loop1 < s.Bids; loop1++ {
			for loop2 := 0; loop2 < s.Bidders; loop2++ {
				bidAmount++
				if err := c.Bid(dst, config.Roster, auctionID, bidders[loop2], bidAmount); err != nil {
					return errors.Wrap(err, "bidding")
				}
				winner = bidders[loop2]
				winning = bidAmount
			}
		}
		send.Record()

		// Let the deadline pass, then settle.
		time.Sleep(time.Duration(s.DurationSec+1) * time.Second)

		confirm := monitor.NewTimeMeasure("confirm")
		sold, err := c.EndAuction(dst, auctionID, seller)
		if err != nil {
			return errors.Wrap(err, "ending auction")
		}
		if !sold {
			return errors.New("auction did not sell")
		}

		owner, err := c.OwnerOf(dst, assetID)
		if err != nil {
			return errors.Wrap(err, "querying custody")
		}
		if owner != winner {
			return errors.New("asset did not go to the highest bidder")
		}

		expectedProceeds += winning
		balance, err := c.BalanceOf(dst, seller)
		if err != nil {
			return errors.Wrap(err, "querying seller balance")
		}
		log.Lvl1("Seller account has", balance)
		if balance != expectedProceeds {
			return errors.New("seller account has wrong amount")
		}

		// Everybody who was outbid claims their escrow back.
		for _, bidder := range bidders {
			if refund, err := c.GetRefund(dst, auctionID, bidder); err != nil {
				return errors.Wrap(err, "querying refund")
			} else if refund > 0 {
				if _, err := c.RefundBid(dst, auctionID, bidder); err != nil {
					return errors.Wrap(err, "claiming refund")
				}
			}
		}
		confirm.Record()

		roundM.Record()
	}

	next, err := c.GetCurrentAuctionID(dst)
	if err != nil {
		return errors.Wrap(err, "querying auction count")
	}
	if next != uint64(s.Rounds) {
		return errors.New("wrong number of auctions on the ledger")
	}

	return nil
}
