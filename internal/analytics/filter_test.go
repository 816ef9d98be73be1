package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func mustTime(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.Parse(domain.CSVDateFormat, value)
	require.NoError(t, err)
	return &ts
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestSelect(t *testing.T) {
	d := testDataset(t)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{
			name:   "empty filter keeps everything",
			filter: Filter{},
			want:   5,
		},
		{
			name:   "from bound",
			filter: Filter{From: mustTime(t, "2010-12-02 00:00:00")},
			want:   2,
		},
		{
			name:   "to bound",
			filter: Filter{To: mustTime(t, "2010-12-01 23:59:59")},
			want:   3,
		},
		{
			name:   "country",
			filter: Filter{Countries: []string{"France"}},
			want:   1,
		},
		{
			name:   "product",
			filter: Filter{Products: []string{"WHITE HANGING HEART"}},
			want:   2,
		},
		{
			name:   "customer substring",
			filter: Filter{Customer: "1258"},
			want:   1,
		},
		{
			name:   "quantity range",
			filter: Filter{MinQty: int64Ptr(10), MaxQty: int64Ptr(50)},
			want:   1,
		},
		{
			name:   "price range",
			filter: Filter{MinPrice: float64Ptr(3.0)},
			want:   3,
		},
		{
			name:   "repeat segment",
			filter: Filter{Segment: SegmentRepeat},
			want:   3,
		},
		{
			name:   "high value segment",
			filter: Filter{Segment: SegmentHighValue},
			want:   3,
		},
		{
			name:   "combined",
			filter: Filter{Countries: []string{"United Kingdom"}, MinQty: int64Ptr(6)},
			want:   3,
		},
		{
			name:   "nothing matches",
			filter: Filter{Countries: []string{"Germany"}},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := d.Select(tt.filter)
			assert.Equal(t, tt.want, v.Len())
		})
	}
}

func TestSelect_NewSegment(t *testing.T) {
	d := testDataset(t)

	// Only lines sitting at a customer's first purchase timestamp count
	// as "new": both 536365 lines, the 12583 line and the 13047 line.
	v := d.Select(Filter{Segment: SegmentNew})
	assert.Equal(t, 4, v.Len())
	for i := 0; i < v.Len(); i++ {
		assert.NotEqual(t, "536460", v.Line(i).InvoiceNo)
	}
}

func TestView_Page(t *testing.T) {
	d := testDataset(t)
	v := d.Select(Filter{})

	tests := []struct {
		name      string
		page      int
		size      int
		wantLines int
		wantTotal int
	}{
		{"first page", 1, 2, 2, 5},
		{"middle page", 2, 2, 2, 5},
		{"short last page", 3, 2, 1, 5},
		{"past the end", 4, 2, 0, 5},
		{"invalid page", 0, 2, 0, 5},
		{"whole view", 1, 100, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, total := v.Page(tt.page, tt.size)
			assert.Len(t, lines, tt.wantLines)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestView_PreservesDateOrder(t *testing.T) {
	d := testDataset(t)
	v := d.Select(Filter{Countries: []string{"United Kingdom"}})

	lines := v.Lines()
	require.Len(t, lines, 4)
	for i := 1; i < len(lines); i++ {
		assert.False(t, lines[i].InvoiceDate.Before(lines[i-1].InvoiceDate))
	}
}

func TestFilter_Empty(t *testing.T) {
	assert.True(t, Filter{}.Empty())
	assert.True(t, Filter{Segment: SegmentAll}.Empty())
	assert.False(t, Filter{Customer: "17850"}.Empty())
	assert.False(t, Filter{Segment: SegmentRepeat}.Empty())
}

func TestValidSegment(t *testing.T) {
	assert.True(t, ValidSegment(""))
	assert.True(t, ValidSegment(SegmentHighValue))
	assert.False(t, ValidSegment("vip"))
}
