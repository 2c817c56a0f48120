package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scardogs/justines-cargo-backoffice/internal/payroll"
	_ "github.com/scardogs/justines-cargo-backoffice/testing"
)

func TestValidNumericText(t *testing.T) {
	for raw, want := range map[string]bool{
		"":      true,
		".":     true,
		"4":     true,
		"2.5":   true,
		"0.":    true,
		".75":   true,
		"-1":    false,
		"1,000": false,
		"1e3":   false,
		"abc":   false,
		"1.2.3": false,
	} {
		require.Equal(t, want, payroll.ValidNumericText(raw), "input %q", raw)
	}
}

func TestRecomputeDerivesTotals(t *testing.T) {
	row := payroll.DraftRow{Kilo: "4", Rate: "2.5", Deduction: "1"}
	payroll.Recompute(&row)

	require.False(t, row.Invalid)
	require.True(t, row.Total.Equal(decimal.NewFromInt(10)), "total = %s", row.Total)
	require.True(t, row.NetTotal.Equal(decimal.NewFromInt(9)), "netTotal = %s", row.NetTotal)
}

func TestRecomputeEmptyTextComputesAsZero(t *testing.T) {
	row := payroll.DraftRow{Kilo: "", Rate: "2.5", Deduction: ""}
	payroll.Recompute(&row)

	require.False(t, row.Invalid)
	require.True(t, row.Total.IsZero())
	require.True(t, row.NetTotal.IsZero())
}

func TestRecomputeFlagsInvalidTextButStillComputes(t *testing.T) {
	row := payroll.DraftRow{Kilo: "4x", Rate: "2", Deduction: "0"}
	payroll.Recompute(&row)

	// The raw text survives so typing can continue; math treats it as zero.
	require.True(t, row.Invalid)
	require.Equal(t, "4x", row.Kilo)
	require.True(t, row.Total.IsZero())
}
