package service

import (
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(content string) ([]byte, error)
}

type DefaultQRGenerator struct {
	Size int
}

func (g DefaultQRGenerator) Generate(content string) ([]byte, error) {
	size := g.Size
	if size == 0 {
		size = 256
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

// TrackingLink points at the customer tracking view of an order.
func TrackingLink(origin, orderID string) string {
	return strings.TrimRight(origin, "/") + "/order/" + url.PathEscape(orderID)
}
