package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestTenantNameFromCode(t *testing.T) {
	cases := map[string]string{
		"AURORA":         "tenant_aurora",
		"  Blue Wave  ":  "tenant_blue_wave",
		"north-star.co":  "tenant_north_star_co",
		"__x__":          "tenant_x",
		"Ocean 2025 Ltd": "tenant_ocean_2025_ltd",
	}
	for in, want := range cases {
		got, err := TenantNameFromCode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := TenantNameFromCode("---")
	assert.Error(t, err)
}

func TestIndexSetsCoverUniqueKeys(t *testing.T) {
	for _, coll := range []string{ShipsCollection, SailingsCollection, CustomersCollection, CruisePricesCollection} {
		require.NotEmpty(t, tenantIndexes[coll], coll)
		assert.True(t, *tenantIndexes[coll][0].Options.Unique, coll)
	}
	assert.Len(t, controlIndexes[IdempotencyCollection], 2)
}

func TestCompanyIndexesKeepTenantDBUnique(t *testing.T) {
	var found bool
	for _, m := range controlIndexes[CompaniesCollection] {
		keys, ok := m.Keys.(bson.D)
		require.True(t, ok)
		if len(keys) == 1 && keys[0].Key == "tenant_db" {
			found = true
			require.NotNil(t, m.Options.Unique)
			assert.True(t, *m.Options.Unique)
		}
	}
	assert.True(t, found, "companies must carry a unique tenant_db index")
}
