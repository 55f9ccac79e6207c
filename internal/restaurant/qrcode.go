package restaurant

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type QRGenerator interface {
	Generate(restaurantID string, table int) ([]byte, error)
}

// TableQRGenerator encodes the customer ordering page of one table.
type TableQRGenerator struct {
	BaseURL string
}

func (g TableQRGenerator) URL(restaurantID string, table int) string {
	q := url.Values{}
	q.Set("restaurant", restaurantID)
	q.Set("table", fmt.Sprint(table))
	return strings.TrimRight(g.BaseURL, "/") + "/customer?" + q.Encode()
}

func (g TableQRGenerator) Generate(restaurantID string, table int) ([]byte, error) {
	return qrcode.Encode(g.URL(restaurantID, table), qrcode.Medium, qrSize)
}
