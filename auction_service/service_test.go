package auction_service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/cothority/v3/darc"
	"go.dedis.ch/kyber/v3/suites"
	"go.dedis.ch/onet/v3"
	"go.dedis.ch/onet/v3/log"
	"go.dedis.ch/onet/v3/network"
)

var tSuite = suites.MustFind("Ed25519")

func TestMain(m *testing.M) {
	log.MainTest(m)
}

func newAddr() string {
	return darc.NewSignerEd25519(nil, nil).Identity().String()
}

func TestService_BuyNow(t *testing.T) {
	local := onet.NewTCPTest(tSuite)
	hosts, _, _ := local.GenTree(3, true)
	defer local.CloseAll()

	svc := local.GetServices(hosts, auctionServiceID)[0].(*Service)

	seller := newAddr()
	buyer := newAddr()

	_, err := svc.MintAsset(&MintAsset{Owner: seller, AssetID: 1})
	require.Nil(t, err)
	_, err = svc.ApproveAsset(&ApproveAsset{Owner: seller, AssetID: 1})
	require.Nil(t, err)
	_, err = svc.MintCoins(&MintCoins{Account: buyer, Amount: 100})
	require.Nil(t, err)

	created, err := svc.CreateAuction(&CreateAuction{
		Seller: seller, AssetID: 1, StartPrice: 10, BuyNowPrice: 50,
	})
	require.Nil(t, err)

	// A bid at the buy-now price has to go through BuyNow.
	_, err = svc.PlaceBid(&PlaceBid{AuctionID: created.AuctionID, Bidder: buyer, Amount: 50})
	require.Error(t, err)

	_, err = svc.BuyNow(&BuyNow{AuctionID: created.AuctionID, Buyer: buyer, Amount: 50})
	require.Nil(t, err)

	auct, err := svc.GetAuction(&GetAuction{AuctionID: created.AuctionID})
	require.Nil(t, err)
	require.True(t, auct.Auction.Sold)
	require.Equal(t, buyer, auct.Auction.HighestBidder)

	owner, err := svc.OwnerOf(&OwnerOf{AssetID: 1})
	require.Nil(t, err)
	require.Equal(t, buyer, owner.Owner)

	balance, err := svc.BalanceOf(&BalanceOf{Account: seller})
	require.Nil(t, err)
	require.Equal(t, uint64(50), balance.Amount)
}

func TestService_EndAuction(t *testing.T) {
	local := onet.NewTCPTest(tSuite)
	hosts, _, _ := local.GenTree(3, true)
	defer local.CloseAll()

	svc := local.GetServices(hosts, auctionServiceID)[0].(*Service)

	seller := newAddr()
	bidder := newAddr()

	_, err := svc.Configure(&Configure{DurationSeconds: 1})
	require.Nil(t, err)
	_, err = svc.MintAsset(&MintAsset{Owner: seller, AssetID: 7})
	require.Nil(t, err)
	_, err = svc.ApproveAsset(&ApproveAsset{Owner: seller, AssetID: 7})
	require.Nil(t, err)
	_, err = svc.MintCoins(&MintCoins{Account: bidder, Amount: 100})
	require.Nil(t, err)

	created, err := svc.CreateAuction(&CreateAuction{
		Seller: seller, AssetID: 7, StartPrice: 10, BuyNowPrice: 50,
	})
	require.Nil(t, err)
	_, err = svc.PlaceBid(&PlaceBid{AuctionID: created.AuctionID, Bidder: bidder, Amount: 20})
	require.Nil(t, err)

	// Before the deadline, ending fails.
	_, err = svc.EndAuction(&EndAuction{AuctionID: created.AuctionID, Caller: seller})
	require.Error(t, err)

	time.Sleep(1500 * time.Millisecond)

	ended, err := svc.EndAuction(&EndAuction{AuctionID: created.AuctionID, Caller: seller})
	require.Nil(t, err)
	require.True(t, ended.Sold)

	owner, err := svc.OwnerOf(&OwnerOf{AssetID: 7})
	require.Nil(t, err)
	require.Equal(t, bidder, owner.Owner)
}

func TestClient_Auction(t *testing.T) {
	local := onet.NewTCPTest(tSuite)
	_, roster, _ := local.GenTree(3, true)
	defer local.CloseAll()

	// The ledger lives on the node all calls go to.
	dst := roster.List[0]

	seller := newAddr()
	bidderA := newAddr()
	bidderB := newAddr()

	c := NewClient()
	require.Nil(t, c.MintAsset(dst, seller, 1))
	require.Nil(t, c.ApproveAsset(dst, seller, 1))
	require.Nil(t, c.MintCoins(dst, bidderA, 100))
	require.Nil(t, c.MintCoins(dst, bidderB, 100))

	id, err := c.CreateAuction(dst, seller, 1, 10, 50)
	require.Nil(t, err)
	require.Equal(t, uint64(0), id)

	next, err := c.GetCurrentAuctionID(dst)
	require.Nil(t, err)
	require.Equal(t, uint64(1), next)

	// Announce the bids over the whole roster.
	require.Nil(t, c.Bid(dst, roster, id, bidderA, 20))
	require.Nil(t, c.Bid(dst, roster, id, bidderB, 30))

	// A too-low bid is refused by the remote ledger.
	require.Error(t, c.Bid(dst, roster, id, bidderA, 30))

	refund, err := c.GetRefund(dst, id, bidderA)
	require.Nil(t, err)
	require.Equal(t, uint64(20), refund)

	amount, err := c.RefundBid(dst, id, bidderA)
	require.Nil(t, err)
	require.Equal(t, uint64(20), amount)
	_, err = c.RefundBid(dst, id, bidderA)
	require.Error(t, err)

	list, err := c.GetAuctionList(dst)
	require.Nil(t, err)
	require.Len(t, list, 1)
	require.Equal(t, seller, list[0].Seller)

	mine, err := c.GetAuctionsOfSeller(dst, seller)
	require.Nil(t, err)
	require.Len(t, mine, 1)

	// Cancel before the deadline, B's standing bid becomes claimable.
	require.Nil(t, c.CancelAuction(dst, id, seller))
	refund, err = c.GetRefund(dst, id, bidderB)
	require.Nil(t, err)
	require.Equal(t, uint64(30), refund)

	owner, err := c.OwnerOf(dst, 1)
	require.Nil(t, err)
	require.Equal(t, seller, owner)

	auct, err := c.GetAuction(dst, id)
	require.Nil(t, err)
	require.False(t, auct.Sold)
	require.Equal(t, "CANCELED", auct.Status.String())
}

// Tests a 2, 5 and 13-node system. It is good practice to test different
// sizes of trees to make sure your protocol is stable.
func TestBidAnnounceProtocol(t *testing.T) {
	nodes := []int{2, 5, 13}
	for _, nbrNodes := range nodes {
		local := onet.NewLocalTest(tSuite)
		_, _, tree := local.GenTree(nbrNodes, true)
		log.Lvl3(tree.Dump())

		pi, err := local.StartProtocol(BidAnnounceName, tree)
		require.Nil(t, err)
		protocol := pi.(*BidAnnounceProtocol)
		timeout := network.WaitRetry * time.Duration(network.MaxRetryConnect*nbrNodes*2) * time.Millisecond
		select {
		case acks := <-protocol.Acks:
			require.Equal(t, nbrNodes, acks, "Didn't get an ack-count of", nbrNodes)
		case <-time.After(timeout):
			t.Fatal("Didn't finish in time")
		}
		local.CloseAll()
	}
}
