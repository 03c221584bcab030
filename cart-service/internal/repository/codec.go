package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/RajDalvi08/CamousKart/cart-service/internal/domain"
	"github.com/RajDalvi08/CamousKart/pkg/money"
	"github.com/shopspring/decimal"
)

// storedLine is the persisted shape of a cart line. Older data may carry a
// numeric id, an "_id" instead of "id", a price stored as a string, or no id
// at all, so decoding goes through json.RawMessage.
type storedLine struct {
	ID       json.RawMessage `json:"id,omitempty"`
	MongoID  json.RawMessage `json:"_id,omitempty"`
	Title    string          `json:"title"`
	Price    json.RawMessage `json:"price"`
	Image    string          `json:"image,omitempty"`
	Images   []string        `json:"images,omitempty"`
	Quantity json.RawMessage `json:"quantity"`
}

type encodedLine struct {
	ID       string      `json:"id,omitempty"`
	Title    string      `json:"title"`
	Price    json.Number `json:"price"`
	Image    string      `json:"image,omitempty"`
	Quantity int         `json:"quantity"`
}

type encodedFavorite struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Price json.Number `json:"price"`
	Image string      `json:"image,omitempty"`
}

// DecodeReport lists what was repaired while decoding. Corrupt is set when
// the whole value had to be discarded.
type DecodeReport struct {
	Corrupt        bool
	SkippedEntries int
	CoercedPrices  []string
	MergedIDs      []string
}

func (r DecodeReport) Clean() bool {
	return !r.Corrupt && r.SkippedEntries == 0 && len(r.CoercedPrices) == 0 && len(r.MergedIDs) == 0
}

func EncodeCart(lines []domain.CartLine) ([]byte, error) {
	out := make([]encodedLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, encodedLine{
			ID:       l.ProductID,
			Title:    l.Title,
			Price:    json.Number(l.Price.String()),
			Image:    l.Image,
			Quantity: l.Quantity,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	return data, nil
}

// DecodeCart never fails: unreadable data yields an empty cart and a report
// saying so. Lines without an id get a synthesized display key; lines that
// share an id are merged.
func DecodeCart(data []byte) ([]domain.CartLine, DecodeReport) {
	var report DecodeReport
	lines := make([]domain.CartLine, 0)

	if len(bytes.TrimSpace(data)) == 0 {
		return lines, report
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		report.Corrupt = true
		return lines, report
	}

	index := make(map[string]int)
	for pos, entry := range raw {
		var s storedLine
		if isNull(entry) || json.Unmarshal(entry, &s) != nil {
			report.SkippedEntries++
			continue
		}

		qty, ok := decodeQuantity(s.Quantity)
		if !ok {
			report.SkippedEntries++
			continue
		}

		price, ok := money.Coerce(s.Price)
		if !ok || price.IsNegative() {
			price = decimal.Zero
			report.CoercedPrices = append(report.CoercedPrices, string(s.Price))
		}

		line := domain.CartLine{
			ProductID: decodeID(s.ID),
			Title:     s.Title,
			Price:     price,
			Image:     s.Image,
			Quantity:  qty,
		}
		if line.ProductID == "" {
			line.ProductID = decodeID(s.MongoID)
		}
		if line.Image == "" && len(s.Images) > 0 {
			line.Image = s.Images[0]
		}

		if line.ProductID == "" {
			line.LegacyKey = legacyKey(pos, line.Title)
			lines = append(lines, line)
			continue
		}

		if i, dup := index[line.ProductID]; dup {
			lines[i].Quantity += line.Quantity
			report.MergedIDs = append(report.MergedIDs, line.ProductID)
			continue
		}
		index[line.ProductID] = len(lines)
		lines = append(lines, line)
	}

	return lines, report
}

func EncodeFavorites(favs []domain.Favorite) ([]byte, error) {
	out := make([]encodedFavorite, 0, len(favs))
	for _, f := range favs {
		out = append(out, encodedFavorite{
			ID:    f.ProductID,
			Title: f.Title,
			Price: json.Number(f.Price.String()),
			Image: f.Image,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode favorites: %w", err)
	}
	return data, nil
}

// DecodeFavorites drops entries without an id; they cannot be toggled off.
func DecodeFavorites(data []byte) ([]domain.Favorite, DecodeReport) {
	var report DecodeReport
	favs := make([]domain.Favorite, 0)

	if len(bytes.TrimSpace(data)) == 0 {
		return favs, report
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		report.Corrupt = true
		return favs, report
	}

	seen := make(map[string]bool)
	for _, entry := range raw {
		var s storedLine
		if isNull(entry) || json.Unmarshal(entry, &s) != nil {
			report.SkippedEntries++
			continue
		}
		id := decodeID(s.ID)
		if id == "" {
			id = decodeID(s.MongoID)
		}
		if id == "" || seen[id] {
			report.SkippedEntries++
			continue
		}
		seen[id] = true

		price, ok := money.Coerce(s.Price)
		if !ok {
			report.CoercedPrices = append(report.CoercedPrices, string(s.Price))
		}
		image := s.Image
		if image == "" && len(s.Images) > 0 {
			image = s.Images[0]
		}
		favs = append(favs, domain.Favorite{ProductID: id, Title: s.Title, Price: price, Image: image})
	}
	return favs, report
}

// decodeID accepts a string or a number; legacy carts used timestamps.
func decodeID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return ""
		}
		return strings.TrimSpace(str)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

// decodeQuantity defaults a missing quantity to 1 and rejects values below 1.
func decodeQuantity(raw json.RawMessage) (int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 1, true
	}
	s = strings.Trim(s, `"`)
	q, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, false
		}
		q = int(f)
	}
	if q < 1 {
		return 0, false
	}
	return q, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func legacyKey(pos int, title string) string {
	return fmt.Sprintf("legacy-%d-%s", pos, strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
}
