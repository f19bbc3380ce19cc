package inventory_repo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilebill/internal/core/types"
	"mobilebill/internal/domain/inventory"
)

func TestMergeMobileQuery_AtomicAndNonDestructive(t *testing.T) {
	repo := New(nil)
	imei := "356938035643809"

	sql, args, err := repo.mergeMobileQuery("m-1", inventory.MobileDelta{
		Quantity:        2,
		ProductIDs:      []string{"ACM-MOB-SMA-0003", "ACM-MOB-SMA-0004"},
		Color:           "Black",
		IMEI1:           &imei,
		PricePerProduct: types.MustMoney("12000"),
	}).ToSql()
	require.NoError(t, err)

	want := "UPDATE mobiles SET total_quantity = total_quantity + $1, " +
		"product_ids = product_ids || $2::text[], " +
		"color = COALESCE(NULLIF($3, ''), color), " +
		"ram = COALESCE(NULLIF($4, ''), ram), " +
		"storage = COALESCE(NULLIF($5, ''), storage), " +
		"imei_number1 = COALESCE(imei_number1, $6), " +
		"price_per_product = $7, " +
		"updated_at = now() WHERE id = $8 RETURNING id, mobile_name,"
	assert.True(t, strings.HasPrefix(sql, want), sql)
	assert.NotContains(t, sql, "selling_price =")
	assert.NotContains(t, sql, "imei_number2 =")

	require.Len(t, args, 8)
	assert.Equal(t, 2, args[0])
	assert.Equal(t, []string{"ACM-MOB-SMA-0003", "ACM-MOB-SMA-0004"}, args[1])
	assert.Equal(t, "", args[3])
	assert.Equal(t, imei, args[5])
	assert.Equal(t, "m-1", args[7])
}

func TestMergeMobileQuery_ExplicitIDTestedInStatement(t *testing.T) {
	sql, args, err := New(nil).mergeMobileQuery("m-1", inventory.MobileDelta{
		Quantity:   1,
		ProductIDs: []string{"ACM-MOB-SMA-0003"},
		ExplicitID: "SKU-A14-BLK",
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "product_ids = (CASE WHEN $2::text = ANY(product_ids) THEN product_ids ELSE product_ids || $3::text END) || $4::text[], ")
	require.Len(t, args, 8)
	assert.Equal(t, "SKU-A14-BLK", args[1])
	assert.Equal(t, "SKU-A14-BLK", args[2])
	assert.Equal(t, []string{"ACM-MOB-SMA-0003"}, args[3])
	assert.Equal(t, "m-1", args[7])
}

func TestMergeMobileQuery_ClearIMEIs(t *testing.T) {
	imei := "356938035643809"
	sql, args, err := New(nil).mergeMobileQuery("m-1", inventory.MobileDelta{
		Quantity:   1,
		IMEI1:      &imei,
		ClearIMEIs: true,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "imei_number1 = $6, imei_number2 = $7, updated_at = now()")
	assert.Nil(t, args[5])
	assert.Nil(t, args[6])
	assert.Equal(t, []string{}, args[1], "nil ids are sent as an empty array")
}

func TestMergeAccessoryQuery(t *testing.T) {
	sql, args, err := New(nil).mergeAccessoryQuery("a-1", inventory.AccessoryDelta{
		Quantity:     3,
		ProductIDs:   []string{"ACM-ACC-CHA-0004"},
		SellingPrice: types.MustMoney("499"),
	}).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql,
		"UPDATE accessories SET quantity = quantity + $1, product_ids = product_ids || $2::text[], selling_price = $3, updated_at = now() WHERE id = $4 RETURNING id, dealer_id,"), sql)
	assert.Len(t, args, 4)
}

func TestIMEIInUseQuery(t *testing.T) {
	sql, args, err := imeiInUseQuery(inventory.Slot2, "861234567890123", "m-1").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT EXISTS ( SELECT 1 FROM mobiles WHERE imei_number2 = $1 AND id <> $2 )", sql)
	assert.Equal(t, []any{"861234567890123", "m-1"}, args)

	sql, args, err = imeiInUseQuery(inventory.Slot1, "1", "").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT EXISTS ( SELECT 1 FROM mobiles WHERE imei_number1 = $1 )", sql)
	assert.Len(t, args, 1)
}

func TestFindMobileQuery_ModelOptional(t *testing.T) {
	repo := New(nil)

	sql, args, err := repo.findMobileQuery(inventory.MobileLookup{DealerID: "D1", Name: "Galaxy A14", Model: "SM-A145F"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE dealer_id = $1 AND mobile_name = $2 AND model_number = $3 ORDER BY created_at, id")
	assert.Len(t, args, 3)

	sql, args, err = repo.findMobileQuery(inventory.MobileLookup{DealerID: "D1", Name: "Galaxy A14"}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "model_number =")
	assert.Len(t, args, 2)
}

func TestDetailsQuery_OnlySetFields(t *testing.T) {
	cam := " 50MP "
	price := types.MustMoney("13999")
	sql, args, err := New(nil).detailsQuery("m-1", inventory.MobileDetails{Camera: &cam, SellingPrice: &price}).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "UPDATE mobiles SET camera = $1, selling_price = $2, updated_at = now() WHERE id = $3"), sql)
	assert.Equal(t, "50MP", args[0])
}

func TestListMobilesQuery(t *testing.T) {
	sql, args, err := New(nil).listMobilesQuery(inventory.ListFilter{Search: "iphone", DealerID: "D1", Limit: 20}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE dealer_id = $1 AND (mobile_name ILIKE $2 OR model_number ILIKE $3 OR brand ILIKE $4)")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY created_at DESC, id LIMIT 20"), sql)
	assert.Equal(t, "%iphone%", args[1])
}
