package booking

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cruiseops/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Signer produces and checks the signed payload printed as a QR code on booking
// documents: ref|id|status|unix|signature.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) Signer {
	return Signer{secret: []byte(secret)}
}

func (s Signer) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (s Signer) Payload(b models.Booking, at time.Time) string {
	data := fmt.Sprintf("%s|%s|%s|%d", b.BookingRef, b.ID, b.Status, at.Unix())
	return data + "|" + s.sign(data)
}

// Verify returns the booking id carried by a payload with a valid signature.
func (s Signer) Verify(payload string) (string, bool) {
	i := strings.LastIndexByte(payload, '|')
	if i < 0 {
		return "", false
	}
	data, sig := payload[:i], payload[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.sign(data))) {
		return "", false
	}
	parts := strings.Split(data, "|")
	if len(parts) != 4 {
		return "", false
	}
	if _, err := strconv.ParseInt(parts[3], 10, 64); err != nil {
		return "", false
	}
	return parts[1], true
}

func money(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

// RenderDocument builds the A4 confirmation PDF for a booking.
func RenderDocument(v View, qrPayload string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(qrPayload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking "+strings.ToUpper(v.Status))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	rows := [][2]string{
		{"Reference", v.BookingRef},
		{"Booking ID", v.ID},
		{"Sailing", v.SailingID},
		{"Cabin", strings.TrimSpace(v.CabinType + " " + v.CabinCategoryCode)},
		{"Guests", fmt.Sprintf("%d adult, %d child, %d infant", v.Guests.Adult, v.Guests.Child, v.Guests.Infant)},
	}
	if v.SailingDate != "" {
		rows = append(rows, [2]string{"Sailing date", v.SailingDate})
	}
	if v.HoldExpiresAt != nil {
		rows = append(rows, [2]string{"Hold expires", v.HoldExpiresAt.UTC().Format(time.RFC3339)})
	}
	for _, r := range rows {
		pdf.Cell(40, 8, r[0]+":")
		pdf.Cell(0, 8, r[1])
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Price breakdown")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	for _, l := range v.Quote.Lines {
		pdf.CellFormat(120, 7, l.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, money(l.Amount, v.Quote.Currency), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(120, 8, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, money(v.Quote.Total, v.Quote.Currency), "T", 1, "R", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Document renders the confirmation PDF of a booking.
func (s *Service) Document(ctx context.Context, tenant, id string, signer Signer) ([]byte, View, error) {
	v, err := s.Get(ctx, tenant, id)
	if err != nil {
		return nil, v, err
	}
	data, err := RenderDocument(v, signer.Payload(v.Booking, s.now()))
	return data, v, err
}
