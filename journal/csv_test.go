package journal

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/ledger"
	"github.com/rustyeddy/stockledger/market"
)

func sampleInstrument() ledger.Instrument {
	return ledger.Instrument{
		ID:      3,
		Name:    "AlphaCorp",
		Segment: market.Shanghai,
		Status:  market.StatusOpen,
	}
}

func sampleEntries() []ledger.Entry {
	return []ledger.Entry{
		{
			ID:           1,
			Ref:          "01JXAAAAAAAAAAAAAAAAAAAAAA",
			InstrumentID: 3,
			CurrentPrice: 10,
			Cost:         10.005787,
			Position:     1000,
			TotalFee:     5.787,
			TradePrice:   10,
			TradeSize:    1000,
			Fees:         fee.Fees{Commission: 5, Regulatory: 0.2, Brokerage: 0.487, Transfer: 0.1},
			Action:       market.Open,
			Profit:       -5.787,
			ProfitRate:   -0.000578,
			Note:         "breakout, volume confirmed",
			ActionTime:   time.Date(2025, 6, 2, 9, 31, 0, 0, time.UTC),
			CreatedAt:    time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:           2,
			Ref:          "01JXBBBBBBBBBBBBBBBBBBBBBB",
			InstrumentID: 3,
			CurrentPrice: 11,
			Cost:         10.1667,
			Position:     1500,
			TradePrice:   10.5,
			TradeSize:    500,
			Action:       market.Add,
			Profit:       1250,
			CreatedAt:    time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestCSVExport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	x, err := NewCSV(&buf)
	require.NoError(t, err)

	require.NoError(t, x.Export(sampleInstrument(), sampleEntries()))
	require.NoError(t, x.Close())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])

	row := records[1]
	assert.Equal(t, "01JXAAAAAAAAAAAAAAAAAAAAAA", row[0])
	assert.Equal(t, "AlphaCorp", row[1])
	assert.Equal(t, "shanghai", row[2])
	assert.Equal(t, "open", row[3])
	assert.Equal(t, "10.000000", row[4])
	assert.Equal(t, "5.000000", row[9])
	assert.Equal(t, "2025-06-02T09:31:00Z", row[17])
	assert.Equal(t, "breakout, volume confirmed", row[19])

	row = records[2]
	assert.Equal(t, "add", row[3])
	assert.Equal(t, "", row[17])
	assert.Equal(t, "1250.000000", row[15])
}

func TestCSVHeaderOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	x, err := NewCSV(&buf)
	require.NoError(t, err)
	require.NoError(t, x.Close())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
