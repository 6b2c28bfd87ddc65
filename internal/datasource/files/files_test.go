package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcollos/dashboard-rn518/internal/datasource"
	"github.com/vcollos/dashboard-rn518/internal/model"
)

const fixtureDir = "../../../testdata/data"

var q4 = model.Period{Year: 2024, Quarter: 4}

func TestSource_Fixture(t *testing.T) {
	src, err := New(fixtureDir, nil)
	require.NoError(t, err)
	ctx := context.Background()

	ops, err := src.ActiveOperators(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "316458", ops[0].ID)
	assert.Equal(t, "421545", ops[1].ID)

	entries, err := src.LedgerEntries(ctx, datasource.ForPeriod("316458", q4))
	require.NoError(t, err)
	assert.Len(t, entries, 7)
	assert.Equal(t, "2024q4.csv", entries[0].SourceFile)

	all, err := src.LedgerEntries(ctx, datasource.Filter{OperatorID: "316458"})
	require.NoError(t, err)
	assert.Len(t, all, 12)

	n, ok, err := src.CoveredLives(ctx, "316458", q4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(15200), n)

	_, ok, err = src.CoveredLives(ctx, "421545", q4)
	require.NoError(t, err)
	assert.False(t, ok)

	meta, ok, err := src.Metadata(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, q4, meta.LatestPeriod)
}

func TestNew_NotConfigured(t *testing.T) {
	_, err := New("", nil)
	assert.ErrorIs(t, err, datasource.ErrNotConfigured)
}

func TestSource_MissingRoster(t *testing.T) {
	src, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = src.ActiveOperators(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = src.LedgerEntries(context.Background(), datasource.Filter{})
	assert.Error(t, err)
}

func TestSource_RetriesAfterFailedLoad(t *testing.T) {
	dir := t.TempDir()
	src, err := New(dir, nil)
	require.NoError(t, err)

	_, err = src.ActiveOperators(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)

	roster := "id,legal_name,trade_name,municipality,region,deregistered_on\n1,Op,,,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "operators.csv"), []byte(roster), 0o644))

	ops, err := src.ActiveOperators(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "1", ops[0].ID)

	// Once loaded, later file changes are not picked up.
	require.NoError(t, os.Remove(filepath.Join(dir, "operators.csv")))
	ops, err = src.ActiveOperators(context.Background())
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func TestSource_NoLedgerNoBeneficiaries(t *testing.T) {
	dir := t.TempDir()
	roster := "id,legal_name,trade_name,municipality,region,deregistered_on\n1,Op,,,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "operators.csv"), []byte(roster), 0o644))

	src, err := New(dir, nil)
	require.NoError(t, err)

	entries, err := src.LedgerEntries(context.Background(), datasource.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, ok, err := src.Metadata(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSource_BadBeneficiaries(t *testing.T) {
	dir := t.TempDir()
	roster := "id,legal_name,trade_name,municipality,region,deregistered_on\n1,Op,,,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "operators.csv"), []byte(roster), 0o644))
	bens := "operator_id,year,quarter,covered_lives\n1,2024,4,many\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beneficiaries.csv"), []byte(bens), 0o644))

	src, err := New(dir, nil)
	require.NoError(t, err)
	_, err = src.ActiveOperators(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "covered_lives")
}
