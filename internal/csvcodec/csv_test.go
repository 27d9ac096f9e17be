package csvcodec

import (
	"strings"
	"testing"

	"orderwalk/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestEncode_Empty(t *testing.T) {
	assert.Equal(t, "", Encode([]types.OrderRecord{}))
}

func TestEncode_HeaderAndRows(t *testing.T) {
	records := []types.OrderRecord{
		{Title: "Kettle", ProductLink: "https://x/gp/product/B1/ref=a", ProductID: "B1", Total: "$5", DateOrdered: "May 1", InvoiceURL: "https://x/i/1"},
		{Title: "Lamp", ProductLink: "https://x/dp/B2", Total: "$7", DateOrdered: "May 2", InvoiceURL: "https://x/i/2"},
	}

	got := Encode(records)

	want := strings.Join([]string{
		"title,productLink,productId,total,dateOrdered,invoiceUrl",
		"Kettle,https://x/gp/product/B1/ref=a,B1,$5,May 1,https://x/i/1",
		"Lamp,https://x/dp/B2,,$7,May 2,https://x/i/2",
	}, "\n")
	assert.Equal(t, want, got)
	assert.False(t, strings.HasSuffix(got, "\n"))
	assert.Equal(t, 2, Rows(got))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "Gift, wrapped", want: `"Gift, wrapped"`},
		{in: `5" cable`, want: `"5"" cable"`},
		{in: " leading space", want: " leading space"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestMerge(t *testing.T) {
	a := "H1,H2\nr1a,r1b"
	b := "H1,H2\nr2a,r2b"

	assert.Equal(t, "H1,H2\nr1a,r1b\nr2a,r2b", Merge(a, b))
}

func TestMerge_EmptyExisting(t *testing.T) {
	b := "H1,H2\nr2a,r2b"

	assert.Equal(t, b, Merge("", b))
}

func TestMerge_EmptyIncoming(t *testing.T) {
	a := "H1,H2\nr1a,r1b"

	assert.Equal(t, a, Merge(a, ""))
}

func TestRows(t *testing.T) {
	assert.Equal(t, 0, Rows(""))
	assert.Equal(t, 0, Rows("H1,H2"))
	assert.Equal(t, 3, Rows("H\na\nb\nc"))
}
