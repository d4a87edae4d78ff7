package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSVHeader = "size,quant,seed,accuracy,f1,throughput,latency,gpu_peak_mem_mb,cpu_rss_mb\n"

func TestParseCSV(t *testing.T) {
	src := testCSVHeader +
		"1,bf16,,0.80,0.79,12.5,0.08,4200,1800\n" +
		"3,4bit,11,0.83,0.82,20.1,0.05,2400,1700\n"
	recs, err := ParseCSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 2, len(recs))

	assert.Equal(t, Size1B, recs[0].Size)
	assert.Equal(t, QuantBF16, recs[0].Quant)
	assert.Nil(t, recs[0].Seed)
	assert.Equal(t, 0.80, recs[0].Accuracy)
	assert.Equal(t, GroupBaseBF16, recs[0].Group())

	assert.Equal(t, Size3B, recs[1].Size)
	require.NotNil(t, recs[1].Seed)
	assert.Equal(t, 11, *recs[1].Seed)
	assert.Equal(t, GroupFT4Bit, recs[1].Group())
	assert.NotEmpty(t, recs[1].ID)
}

func TestParseCSVRejectsAllOnBadCategory(t *testing.T) {
	src := testCSVHeader +
		"1,bf16,,0.80,0.79,12.5,0.08,4200,1800\n" +
		"3,8bit,,0.83,0.82,20.1,0.05,2400,1700\n"
	recs, err := ParseCSV(strings.NewReader(src))
	assert.Error(t, err)
	assert.Nil(t, recs)
}

func TestParseCSVRejectsAllOnBadNumber(t *testing.T) {
	src := testCSVHeader +
		"1,bf16,,eighty,0.79,12.5,0.08,4200,1800\n"
	_, err := ParseCSV(strings.NewReader(src))
	assert.Error(t, err)
}

func TestParseCSVRejectsMissingColumn(t *testing.T) {
	src := "size,quant,seed,accuracy,f1,throughput,latency,gpu_peak_mem_mb\n" +
		"1,bf16,,0.80,0.79,12.5,0.08,4200\n"
	_, err := ParseCSV(strings.NewReader(src))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cpu_rss_mb")
}

func TestParseCSVRejectsInvalidSeed(t *testing.T) {
	src := testCSVHeader +
		"1,4bit,x1,0.80,0.79,12.5,0.08,4200,1800\n"
	_, err := ParseCSV(strings.NewReader(src))
	assert.Error(t, err)
}

func TestParseCSVEmptyFile(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseCSVHeaderOnly(t *testing.T) {
	recs, err := ParseCSV(strings.NewReader(testCSVHeader))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(recs))
}
