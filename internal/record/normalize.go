package record

import (
	"encoding/json"
	"strconv"
	"time"
)

// Raw is an untyped server payload. Upstream sources disagree on field
// spelling, so every lookup tries the snake_case key first and then the
// camelCase one.
type Raw map[string]any

// PlaceholderCoinID is substituted when a payload carries neither coin_id
// nor id, so the record stays addressable.
const PlaceholderCoinID = "unknown-coin"

// lookup returns the first non-nil value among keys.
func (r Raw) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// str returns the first present value coerced to a non-empty string.
// Numeric identifiers are formatted rather than rejected.
func (r Raw) str(keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s := coerceString(v); s != "" {
			return s, true
		}
	}
	return "", false
}

func (r Raw) strOr(def string, keys ...string) string {
	if s, ok := r.str(keys...); ok {
		return s
	}
	return def
}

// numPtr returns the first present numeric value, or nil.
func (r Raw) numPtr(keys ...string) *float64 {
	v, ok := r.lookup(keys...)
	if !ok {
		return nil
	}
	f, ok := coerceFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func (r Raw) numOr(def float64, keys ...string) float64 {
	if p := r.numPtr(keys...); p != nil {
		return *p
	}
	return def
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NormalizeCoin maps an arbitrary coin payload to the canonical shape. It
// never fails: missing fields take the documented defaults and a missing
// identifier takes PlaceholderCoinID.
func NormalizeCoin(raw Raw) Coin {
	now := nowISO()
	return Coin{
		CoinID:             raw.strOr(PlaceholderCoinID, "coin_id", "id"),
		Mint:               raw.strOr("Unknown mint", "mint"),
		Authority:          raw.strOr("Unknown authority", "authority"),
		DateRange:          raw.strOr("Unknown date", "date_range", "dateRange"),
		Denomination:       raw.strOr("Unknown denomination", "denomination"),
		Metal:              raw.strOr("—", "metal"),
		Weight:             raw.numPtr("weight"),
		Diameter:           raw.numPtr("diameter"),
		DieAxis:            raw.strOr("", "die_axis", "dieAxis"),
		ObverseDescription: raw.strOr("No description", "obverse_description", "obverseDescription"),
		ReverseDescription: raw.strOr("No description", "reverse_description", "reverseDescription"),
		ObverseInscription: raw.strOr("", "obverse_inscription", "obverseInscription"),
		ReverseInscription: raw.strOr("", "reverse_inscription", "reverseInscription"),
		Monograms:          raw.strOr("", "monograms"),
		ReferenceList:      raw.strOr("", "reference_list", "referenceList"),
		CatalogNumber:      raw.strOr("", "catalog_number", "catalogNumber"),
		SourceDatabase:     raw.strOr("", "source_database", "sourceDatabase"),
		ProvenanceText:     raw.strOr("", "provenance_text", "provenanceText"),
		PreviousOwners:     raw.strOr("", "previous_owners", "previousOwners"),
		AuctionHistory:     normalizeAuctionHistory(raw, "auction_history", "auctionHistory"),
		EstimateValue:      raw.strOr("", "estimate_value", "estimateValue"),
		SalePrice:          raw.strOr("", "sale_price", "salePrice"),
		ObverseImageURL:    raw.strOr("", "obverse_image_url", "obverse_image_key", "obverseImageUrl"),
		ReverseImageURL:    raw.strOr("", "reverse_image_url", "reverse_image_key", "reverseImageUrl"),
		LotDescriptionRaw:  raw.strOr("", "lot_description_raw", "lotDescriptionRaw"),
		LotDescriptionEN:   raw.strOr("", "lot_description_EN", "lotDescriptionEn"),
		CreatedAt:          raw.strOr(now, "created_at", "createdAt"),
		UpdatedAt:          raw.strOr(now, "updated_at", "updatedAt"),
		SourceType:         raw.strOr(SourceMuseum, "source_type", "sourceType"),
	}
}

// normalizeAuctionHistory tolerates anything that is not an ordered
// sequence by treating it as empty.
func normalizeAuctionHistory(raw Raw, keys ...string) []AuctionEvent {
	v, ok := raw.lookup(keys...)
	if !ok {
		return []AuctionEvent{}
	}
	list, ok := v.([]any)
	if !ok {
		return []AuctionEvent{}
	}
	events := make([]AuctionEvent, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		e := Raw(m)
		year := 0
		if p := e.numPtr("year"); p != nil {
			year = int(*p)
		}
		events = append(events, AuctionEvent{
			House:         e.strOr("", "house"),
			Sale:          e.strOr("", "sale"),
			Year:          year,
			Date:          e.strOr("", "date"),
			Lot:           e.strOr("", "lot"),
			PriceRealized: e.strOr("", "price_realized", "priceRealized"),
		})
	}
	return events
}

// NormalizeCandidate maps a search result payload. The embedded metadata is
// normalized as a coin with its source type forced to auction, its
// identifier defaulting to the candidate's own id.
func NormalizeCandidate(raw Raw) Candidate {
	candidateID := raw.strOr("", "id")

	meta := Raw{}
	if v, ok := raw.lookup("metadata"); ok {
		if m, ok := v.(map[string]any); ok {
			for k, val := range m {
				meta[k] = val
			}
		}
	}
	if _, ok := meta.str("coin_id", "id"); !ok && candidateID != "" {
		meta["coin_id"] = candidateID
	}
	metadata := NormalizeCoin(meta)
	metadata.SourceType = SourceAuction

	return Candidate{
		ID:               candidateID,
		MuseumCoinID:     raw.strOr(metadata.CoinID, "museum_coin_id", "museumCoinId"),
		SimilarityScore:  raw.numOr(0, "similarity_score", "similarityScore"),
		ListingReference: raw.strOr(fallbackListing(metadata), "listing_reference", "listingReference"),
		SaleDate:         raw.strOr("", "sale_date", "saleDate"),
		EstimateValue:    raw.strOr(metadata.EstimateValue, "estimate_value", "estimateValue"),
		SalePrice:        raw.strOr(metadata.SalePrice, "sale_price", "salePrice"),
		Metadata:         metadata,
		ListingURL:       raw.strOr(metadata.ObverseImageURL, "listing_url", "listingUrl"),
	}
}

func fallbackListing(metadata Coin) string {
	if metadata.CatalogNumber != "" {
		return metadata.CatalogNumber
	}
	return "Candidate listing"
}

// NormalizeMatch maps a match-record payload, resolving display titles
// against the currently loaded collections. Unknown statuses coerce to
// Pending; the identifier is coerced to a string whatever form the server
// returned it in.
func NormalizeMatch(raw Raw, coins []Coin, candidates []Candidate) MatchRecord {
	coinID := raw.strOr("", "coin_id", "coinId")
	candidateID := raw.strOr("", "candidate_id", "candidateId")

	museumTitle, ok := raw.str("museum_coin_title", "museumCoinTitle")
	if !ok {
		museumTitle = coinID
		for _, c := range coins {
			if c.CoinID == coinID {
				if c.CatalogNumber != "" {
					museumTitle = c.CatalogNumber
				}
				break
			}
		}
	}

	candidateTitle, ok := raw.str("candidate_title", "candidateTitle")
	if !ok {
		candidateTitle = "Candidate"
		for _, c := range candidates {
			if c.ID == candidateID && candidateID != "" {
				candidateTitle = c.ListingReference
				break
			}
		}
	}

	return MatchRecord{
		ID:              raw.strOr("", "id"),
		CoinID:          coinID,
		CandidateID:     candidateID,
		SimilarityScore: raw.numOr(0, "similarity_score", "similarityScore"),
		Status:          ParseStatus(raw.strOr("", "status")),
		SavedAt:         raw.strOr("", "saved_at", "savedAt"),
		Source:          raw.strOr(candidateTitle, "source"),
		Notes:           raw.strOr("", "notes"),
		MuseumCoinTitle: museumTitle,
		CandidateTitle:  candidateTitle,
	}
}

// NormalizeCoins maps a slice of raw payloads.
func NormalizeCoins(raws []Raw) []Coin {
	coins := make([]Coin, 0, len(raws))
	for _, r := range raws {
		coins = append(coins, NormalizeCoin(r))
	}
	return coins
}

// NormalizeCandidates maps a slice of raw payloads.
func NormalizeCandidates(raws []Raw) []Candidate {
	out := make([]Candidate, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeCandidate(r))
	}
	return out
}

// NormalizeMatches maps a slice of raw payloads against loaded collections.
func NormalizeMatches(raws []Raw, coins []Coin, candidates []Candidate) []MatchRecord {
	out := make([]MatchRecord, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeMatch(r, coins, candidates))
	}
	return out
}
