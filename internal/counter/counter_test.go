package counter

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sourmash-bio/revindex/internal/datasetset"
)

func TestMostCommonOrdersByCountThenID(t *testing.T) {
	c := New()
	c.IncrementSet(datasetset.New([]datasetset.DatasetID{1, 2, 3})) // A=1,B=2,C=3 get +1 each... simplified below
	c.Increment(10)
	c.Increment(10)
	c.Increment(10)
	c.Increment(20)
	c.Increment(20)
	c.Increment(30)

	most := c.MostCommon()
	require.Equal(t, datasetset.DatasetID(10), most[0].DatasetID)
	require.Equal(t, 3, most[0].Count)
	require.Equal(t, datasetset.DatasetID(20), most[1].DatasetID)
	require.Equal(t, []datasetset.DatasetID{1, 2, 3, 30}, []datasetset.DatasetID{most[2].DatasetID, most[3].DatasetID, most[4].DatasetID, most[5].DatasetID})
}

func TestMostCommonTiesBreakByAscendingID(t *testing.T) {
	c := New()
	c.Increment(5)
	c.Increment(2)
	c.Increment(9)

	most := c.MostCommon()
	require.Equal(t, []datasetset.DatasetID{2, 5, 9}, []datasetset.DatasetID{most[0].DatasetID, most[1].DatasetID, most[2].DatasetID})
}

func TestRemoveDropsDataset(t *testing.T) {
	c := New()
	c.Increment(1)
	c.Remove(1)
	require.Equal(t, 0, c.Count(1))
	require.True(t, c.IsEmpty())
}

func TestBestOnEmptyCounter(t *testing.T) {
	c := New()
	_, ok := c.Best()
	require.False(t, ok)
}
