// Package idcard renders a member's identity card as a PNG.
package idcard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/dalemusser/sangathan/internal/domain/models"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	Width  = 640
	Height = 400

	headerHeight = 72
	qrSize       = 180
	margin       = 24
	lineHeight   = 22
	maxChars     = 52
)

// OrgName is printed in the header band.
var OrgName = "LOK JANSHAKTI PARTY (RAM VILAS) - BIHAR"

var (
	headerColor = color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}
	textColor   = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	mutedColor  = color.RGBA{R: 0x4b, G: 0x55, B: 0x63, A: 0xff}

	badgeColors = map[string]color.RGBA{
		models.BadgeBlue:  {R: 0x25, G: 0x63, B: 0xeb, A: 0xff},
		models.BadgeGreen: {R: 0x16, G: 0xa3, B: 0x4a, A: 0xff},
		models.BadgeRed:   {R: 0xdc, G: 0x26, B: 0x26, A: 0xff},
	}
)

// ErrNotApproved is returned for members whose card cannot be issued.
var ErrNotApproved = errors.New("identity card is available to approved members only")

// QRContent is the payload encoded in the card's QR code.
func QRContent(u *models.User) string {
	return fmt.Sprintf("member:%s:%s", u.ID.Hex(), u.Mobile)
}

// Render draws u's card. Only APPROVED members get a card.
func Render(u *models.User) ([]byte, error) {
	if u == nil || u.Status != models.StatusApproved {
		return nil, ErrNotApproved
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, Width, headerHeight), image.NewUniform(headerColor), image.Point{}, draw.Src)

	if c, ok := badgeColors[u.Badge]; ok {
		draw.Draw(img, image.Rect(0, headerHeight, Width, headerHeight+8), image.NewUniform(c), image.Point{}, draw.Src)
	}

	text(img, margin, 32, OrgName, color.White)
	text(img, margin, 54, "MEMBER IDENTITY CARD", color.White)

	y := headerHeight + 44
	rows := []struct {
		label, value string
	}{
		{"Name", u.Name},
		{"Father", u.FatherName},
		{"Designation", u.Designation},
		{"District", u.District},
		{"Area", u.Jurisdiction},
		{"Mobile", u.Mobile},
		{"Member ID", u.ID.Hex()},
	}
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		text(img, margin, y, row.label+":", mutedColor)
		text(img, margin+96, y, clip(row.value, maxChars-24), textColor)
		y += lineHeight
	}

	q, err := qrcode.New(QRContent(u), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}
	q.DisableBorder = true
	qr := q.Image(qrSize)
	at := image.Pt(Width-margin-qrSize, headerHeight+28)
	draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(image.Pt(qrSize, qrSize))}, qr, image.Point{}, draw.Src)

	text(img, margin, Height-margin, "Issued to approved members. Verify by scanning the code.", mutedColor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

func text(dst draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// clip shortens s to n runes. basicfont only covers ASCII, so other runes
// render as boxes; they are kept rather than dropped.
func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
