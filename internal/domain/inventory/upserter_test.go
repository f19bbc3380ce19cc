package inventory_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilebill/internal/core/numerator"
	"mobilebill/internal/core/types"
	"mobilebill/internal/domain/codes"
	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/domain/inventory/inventorytest"
)

func galaxyLine(qty int) inventory.Line {
	return inventory.Line{
		LineNo:        1,
		DealerID:      "DLR-1",
		DealerName:    "Acme Traders",
		Category:      codes.CategoryMobile,
		ProductName:   "Galaxy A14",
		Model:         "SM-A145F",
		Brand:         "Samsung",
		Quantity:      qty,
		PurchasePrice: types.MustMoney("12000"),
		SellingPrice:  types.MustMoney("14000"),
		Color:         "Black",
		RAM:           "4GB",
		Storage:       "64GB",
	}
}

func newUpserter() (*inventory.Upserter, *inventorytest.MemRepo, *numerator.MockAllocator) {
	repo := inventorytest.New()
	alloc := numerator.NewMockAllocator()
	return inventory.NewUpserter(repo, alloc), repo, alloc
}

func TestApply_NewMobileGroup(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	res, err := u.Apply(ctx, galaxyLine(2))
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, inventory.KindMobile, res.Kind)
	assert.Equal(t, []string{"ACM-MOB-SMA-0001", "ACM-MOB-SMA-0002"}, res.UnitIDs)
	assert.Equal(t, inventory.NoImei, res.Identity)

	mobiles := repo.Mobiles()
	require.Len(t, mobiles, 1)
	m := mobiles[0]
	assert.Equal(t, 2, m.TotalQuantity)
	assert.Equal(t, "Galaxy A14", m.MobileName)
	assert.Equal(t, "SM-A145F", m.ModelNumber)
	assert.Equal(t, "Acme Traders", m.DealerName)
	assert.Nil(t, m.IMEI1)
	assert.Nil(t, m.IMEI2)
	assert.True(t, types.MustMoney("12000").Equal(m.PricePerProduct))
}

func TestApply_GroupingMergeAcrossPurchases(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	_, err := u.Apply(ctx, galaxyLine(2))
	require.NoError(t, err)
	res, err := u.Apply(ctx, galaxyLine(3))
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, []string{"ACM-MOB-SMA-0003", "ACM-MOB-SMA-0004", "ACM-MOB-SMA-0005"}, res.UnitIDs)

	mobiles := repo.Mobiles()
	require.Len(t, mobiles, 1)
	assert.Equal(t, 5, mobiles[0].TotalQuantity)
	assert.Equal(t, []string{
		"ACM-MOB-SMA-0001", "ACM-MOB-SMA-0002",
		"ACM-MOB-SMA-0003", "ACM-MOB-SMA-0004", "ACM-MOB-SMA-0005",
	}, mobiles[0].ProductIDs)
}

func TestApply_ModelMatchedOnlyWhenGiven(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	_, err := u.Apply(ctx, galaxyLine(1))
	require.NoError(t, err)

	other := galaxyLine(1)
	other.Model = "SM-A146B"
	res, err := u.Apply(ctx, other)
	require.NoError(t, err)
	assert.True(t, res.Created, "different model is a different group")

	noModel := galaxyLine(1)
	noModel.Model = "  "
	res, err = u.Apply(ctx, noModel)
	require.NoError(t, err)
	assert.False(t, res.Created, "blank model matches on dealer and name only")
	assert.Equal(t, []string{"ACM-MOB-GAL-0001"}, res.UnitIDs, "key falls back to product name")

	assert.Len(t, repo.Mobiles(), 2)
}

func TestApply_NonDestructivePartialUpdate(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	_, err := u.Apply(ctx, galaxyLine(1))
	require.NoError(t, err)

	partial := galaxyLine(1)
	partial.Color = ""
	partial.RAM = ""
	partial.Storage = "128GB"
	partial.PurchasePrice = types.Zero()
	partial.SellingPrice = types.MustMoney("13500")
	_, err = u.Apply(ctx, partial)
	require.NoError(t, err)

	m := repo.Mobiles()[0]
	assert.Equal(t, "Black", m.Color)
	assert.Equal(t, "4GB", m.RAM)
	assert.Equal(t, "128GB", m.Storage)
	assert.True(t, types.MustMoney("12000").Equal(m.PricePerProduct))
	assert.True(t, types.MustMoney("13500").Equal(m.SellingPrice))
}

func TestApply_IMEIFirstWriteWins(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	first := galaxyLine(1)
	first.IMEI1 = "356938035643809"
	res, err := u.Apply(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, inventory.OneImei, res.Identity)

	second := galaxyLine(1)
	second.IMEI1 = "356938035643810"
	second.IMEI2 = "356938035643811"
	res, err = u.Apply(ctx, second)
	require.NoError(t, err)
	assert.False(t, res.Demoted)
	assert.Equal(t, inventory.TwoImei, res.Identity)

	m := repo.Mobiles()[0]
	require.NotNil(t, m.IMEI1)
	require.NotNil(t, m.IMEI2)
	assert.Equal(t, "356938035643809", *m.IMEI1)
	assert.Equal(t, "356938035643811", *m.IMEI2)
}

func TestApply_DuplicateIMEIDemotesNewGroup(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	first := galaxyLine(1)
	first.IMEI1 = "356938035643809"
	_, err := u.Apply(ctx, first)
	require.NoError(t, err)

	clash := galaxyLine(1)
	clash.ProductName = "Galaxy M14"
	clash.Model = "SM-M146B"
	clash.IMEI1 = "356938035643809"
	clash.IMEI2 = "356938035643999"
	res, err := u.Apply(ctx, clash)
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.True(t, res.Demoted)
	assert.Equal(t, inventory.NoImei, res.Identity)

	mobiles := repo.Mobiles()
	require.Len(t, mobiles, 2)
	assert.Nil(t, mobiles[1].IMEI1)
	assert.Nil(t, mobiles[1].IMEI2)
	assert.Equal(t, "356938035643809", *mobiles[0].IMEI1)
}

func TestApply_DuplicateIMEIOnMergeClearsGroup(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	holder := galaxyLine(1)
	holder.ProductName = "Redmi 12"
	holder.Model = "23053RN02I"
	holder.IMEI2 = "861234567890123"
	_, err := u.Apply(ctx, holder)
	require.NoError(t, err)

	_, err = u.Apply(ctx, galaxyLine(1))
	require.NoError(t, err)

	clash := galaxyLine(2)
	clash.IMEI2 = "861234567890123"
	res, err := u.Apply(ctx, clash)
	require.NoError(t, err)
	assert.True(t, res.Demoted)

	m := repo.Mobiles()[1]
	assert.Equal(t, 3, m.TotalQuantity, "units are still added")
	assert.Nil(t, m.IMEI2)
}

func TestApply_DuplicateOnWriteRetriesOnce(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	line := galaxyLine(1)
	line.IMEI1 = "356938035643809"
	repo.DuplicateWrites = 1

	res, err := u.Apply(ctx, line)
	require.NoError(t, err)
	assert.True(t, res.Demoted)
	assert.Equal(t, inventory.NoImei, res.Identity)
	require.Len(t, repo.Mobiles(), 1)
	assert.Nil(t, repo.Mobiles()[0].IMEI1)
}

func TestApply_SecondDuplicatePropagates(t *testing.T) {
	u, repo, _ := newUpserter()
	repo.DuplicateWrites = 2

	_, err := u.Apply(context.Background(), galaxyLine(1))
	require.Error(t, err)
	assert.Empty(t, repo.Mobiles())
}

func TestApply_DuplicateOnMergeRetriesOnce(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	_, err := u.Apply(ctx, galaxyLine(1))
	require.NoError(t, err)

	line := galaxyLine(1)
	line.IMEI1 = "356938035643809"
	repo.DuplicateWrites = 1

	res, err := u.Apply(ctx, line)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.True(t, res.Demoted)
	assert.Equal(t, inventory.NoImei, res.Identity)
	assert.Equal(t, []string{"ACM-MOB-SMA-0002"}, res.UnitIDs)

	mobiles := repo.Mobiles()
	require.Len(t, mobiles, 1)
	assert.Equal(t, 2, mobiles[0].TotalQuantity)
	assert.Nil(t, mobiles[0].IMEI1)
	assert.Nil(t, mobiles[0].IMEI2)
	assert.Len(t, mobiles[0].ProductIDs, 2)
}

func TestApply_SecondDuplicateOnMergePropagates(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	_, err := u.Apply(ctx, galaxyLine(1))
	require.NoError(t, err)

	repo.DuplicateWrites = 2
	_, err = u.Apply(ctx, galaxyLine(1))
	require.Error(t, err)
	assert.Equal(t, 1, repo.Mobiles()[0].TotalQuantity)
}

func TestApply_ExplicitProductIDFirstAndOnce(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	line := galaxyLine(1)
	line.ProductID = "SKU-A14-BLK"
	_, err := u.Apply(ctx, line)
	require.NoError(t, err)

	_, err = u.Apply(ctx, line)
	require.NoError(t, err)

	m := repo.Mobiles()[0]
	assert.Equal(t, []string{"SKU-A14-BLK", "ACM-MOB-SMA-0001", "ACM-MOB-SMA-0002"}, m.ProductIDs)
}

func TestApply_AccessoryGroup(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	line := inventory.Line{
		LineNo:        2,
		DealerID:      "DLR-1",
		DealerName:    "Acme Traders",
		Category:      codes.CategoryAccessory,
		ProductName:   "Charger 20W",
		Quantity:      3,
		PurchasePrice: types.MustMoney("350"),
		SellingPrice:  types.MustMoney("499"),
	}
	res, err := u.Apply(ctx, line)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, []string{"ACM-ACC-CHA-0001", "ACM-ACC-CHA-0002", "ACM-ACC-CHA-0003"}, res.UnitIDs)

	line.Quantity = 1
	line.PurchasePrice = types.Zero()
	res, err = u.Apply(ctx, line)
	require.NoError(t, err)
	assert.False(t, res.Created)

	accs := repo.Accessories()
	require.Len(t, accs, 1)
	a := accs[0]
	assert.Equal(t, "ACM-ACC-CHA", a.ProductID)
	assert.Equal(t, 4, a.Quantity)
	assert.Len(t, a.ProductIDs, 4)
	assert.True(t, types.MustMoney("350").Equal(a.UnitPrice))
}

func TestApply_OtherCategorySkipped(t *testing.T) {
	u, repo, alloc := newUpserter()

	line := galaxyLine(1)
	line.Category = codes.ParseCategory("service")
	res, err := u.Apply(context.Background(), line)
	require.NoError(t, err)
	assert.Equal(t, inventory.KindSkipped, res.Kind)
	assert.Empty(t, repo.Mobiles())
	assert.Empty(t, alloc.Calls())
}

func TestApply_AllocatorFailurePropagates(t *testing.T) {
	repo := inventorytest.New()
	alloc := numerator.NewMockAllocator()
	alloc.NextFunc = func(ctx context.Context, key string) (int64, error) {
		return 0, errors.New("counter table locked")
	}
	u := inventory.NewUpserter(repo, alloc)

	_, err := u.Apply(context.Background(), galaxyLine(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counter table locked")
	assert.Empty(t, repo.Mobiles())
}

func TestApply_RejectsNonPositiveQuantity(t *testing.T) {
	u, _, _ := newUpserter()
	_, err := u.Apply(context.Background(), galaxyLine(0))
	assert.Error(t, err)
}

func TestApply_AccessoryCreateRaceMergesIntoWinner(t *testing.T) {
	u, repo, _ := newUpserter()
	repo.AccessoryCreateRaces = 1

	res, err := u.Apply(context.Background(), inventory.Line{
		DealerID:      "DLR-1",
		DealerName:    "Acme Traders",
		Category:      codes.CategoryAccessory,
		ProductName:   "Charger 20W",
		Quantity:      3,
		PurchasePrice: types.MustMoney("350"),
	})
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.True(t, strings.HasPrefix(res.GroupID, "winner-"), res.GroupID)
	assert.Equal(t, []string{"ACM-ACC-CHA-0001", "ACM-ACC-CHA-0002", "ACM-ACC-CHA-0003"}, res.UnitIDs)

	accs := repo.Accessories()
	require.Len(t, accs, 1)
	assert.Equal(t, res.GroupID, accs[0].ID)
	assert.Equal(t, 4, accs[0].Quantity)
	assert.Equal(t, []string{"ACM-ACC-CHA-W001", "ACM-ACC-CHA-0001", "ACM-ACC-CHA-0002", "ACM-ACC-CHA-0003"}, accs[0].ProductIDs)
}

func TestMergeMobile_ExplicitIDCheckedAgainstStoredRow(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	res, err := u.Apply(ctx, galaxyLine(1))
	require.NoError(t, err)

	// Two merges carrying the same explicit id, both decided from a read
	// that did not hold it yet.
	for _, unit := range []string{"ACM-MOB-SMA-0002", "ACM-MOB-SMA-0003"} {
		_, err := repo.MergeMobile(ctx, res.GroupID, inventory.MobileDelta{
			Quantity:   1,
			ProductIDs: []string{unit},
			ExplicitID: "SKU-A14-BLK",
		})
		require.NoError(t, err)
	}

	m := repo.Mobiles()[0]
	assert.Equal(t, []string{"ACM-MOB-SMA-0001", "SKU-A14-BLK", "ACM-MOB-SMA-0002", "ACM-MOB-SMA-0003"}, m.ProductIDs)
	assert.Equal(t, 3, m.TotalQuantity)
}

func TestApply_CollidingDealerCodesKeepSeparateGroups(t *testing.T) {
	u, repo, _ := newUpserter()
	ctx := context.Background()

	charger := func(dealerID, dealerName string, qty int) inventory.Line {
		return inventory.Line{
			DealerID:      dealerID,
			DealerName:    dealerName,
			Category:      codes.CategoryAccessory,
			ProductName:   "Charger 20W",
			Quantity:      qty,
			PurchasePrice: types.MustMoney("350"),
		}
	}

	first, err := u.Apply(ctx, charger("DLR-1", "Acme Traders", 2))
	require.NoError(t, err)
	second, err := u.Apply(ctx, charger("DLR-2", "Acme Mobiles", 2))
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.True(t, second.Created)
	assert.NotEqual(t, first.GroupID, second.GroupID)
	assert.Equal(t, []string{"ACM-ACC-CHA-0001", "ACM-ACC-CHA-0002"}, first.UnitIDs)
	assert.Equal(t, []string{"ACM-ACC-CHA-0003", "ACM-ACC-CHA-0004"}, second.UnitIDs)

	accs := repo.Accessories()
	require.Len(t, accs, 2)
	assert.Equal(t, accs[0].ProductID, accs[1].ProductID)

	found, err := repo.FindAccessoryByUnitID(ctx, "ACM-ACC-CHA")
	require.NoError(t, err)
	assert.Equal(t, first.GroupID, found.ID, "a bare prefix resolves to the oldest group")

	found, err = repo.FindAccessoryByUnitID(ctx, "ACM-ACC-CHA-0004")
	require.NoError(t, err)
	assert.Equal(t, second.GroupID, found.ID)
}
