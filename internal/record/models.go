package record

// MatchStatus is a curator decision. Normalization coerces every other
// server-supplied value to StatusPending.
type MatchStatus string

const (
	StatusConfirmed MatchStatus = "Confirmed"
	StatusRejected  MatchStatus = "Rejected"
	StatusPending   MatchStatus = "Pending"
)

// ParseStatus coerces an arbitrary status string to a known MatchStatus.
func ParseStatus(s string) MatchStatus {
	switch MatchStatus(s) {
	case StatusConfirmed, StatusRejected, StatusPending:
		return MatchStatus(s)
	}
	return StatusPending
}

// AuctionEvent is one historical auction appearance of a coin.
type AuctionEvent struct {
	House         string `json:"house"`
	Sale          string `json:"sale,omitempty"`
	Year          int    `json:"year,omitempty"`
	Date          string `json:"date,omitempty"`
	Lot           string `json:"lot"`
	PriceRealized string `json:"price_realized,omitempty"`
}

// Key identifies an event for list rendering and dedup. Two events with the
// same house and lot are the same entry.
func (e AuctionEvent) Key() string { return e.House + "|" + e.Lot }

// Coin is the canonical coin shape, museum catalog entry or auction listing.
// Normalization fills every field, so zero values only appear where the
// documented default is empty.
type Coin struct {
	CoinID              string         `json:"coin_id"`
	Mint                string         `json:"mint"`
	Authority           string         `json:"authority"`
	DateRange           string         `json:"date_range"`
	Denomination        string         `json:"denomination"`
	Metal               string         `json:"metal"`
	Weight              *float64       `json:"weight,omitempty"`
	Diameter            *float64       `json:"diameter,omitempty"`
	DieAxis             string         `json:"die_axis,omitempty"`
	ObverseDescription  string         `json:"obverse_description"`
	ReverseDescription  string         `json:"reverse_description"`
	ObverseInscription  string         `json:"obverse_inscription,omitempty"`
	ReverseInscription  string         `json:"reverse_inscription,omitempty"`
	Monograms           string         `json:"monograms,omitempty"`
	ReferenceList       string         `json:"reference_list,omitempty"`
	CatalogNumber       string         `json:"catalog_number,omitempty"`
	SourceDatabase      string         `json:"source_database,omitempty"`
	ProvenanceText      string         `json:"provenance_text,omitempty"`
	PreviousOwners      string         `json:"previous_owners,omitempty"`
	AuctionHistory      []AuctionEvent `json:"auction_history"`
	EstimateValue       string         `json:"estimate_value,omitempty"`
	SalePrice           string         `json:"sale_price,omitempty"`
	ObverseImageURL     string         `json:"obverse_image_url,omitempty"`
	ReverseImageURL     string         `json:"reverse_image_url,omitempty"`
	LotDescriptionRaw   string         `json:"lot_description_raw,omitempty"`
	LotDescriptionEN    string         `json:"lot_description_en,omitempty"`
	CreatedAt           string         `json:"created_at"`
	UpdatedAt           string         `json:"updated_at"`
	SourceType          string         `json:"source_type"`
}

// Source types for Coin.SourceType.
const (
	SourceMuseum  = "museum"
	SourceAuction = "auction"
)

// Candidate is an externally-sourced listing proposed as a match for a
// catalog coin.
type Candidate struct {
	ID               string  `json:"id"`
	MuseumCoinID     string  `json:"museum_coin_id"`
	SimilarityScore  float64 `json:"similarity_score"`
	ListingReference string  `json:"listing_reference"`
	SaleDate         string  `json:"sale_date"`
	EstimateValue    string  `json:"estimate_value,omitempty"`
	SalePrice        string  `json:"sale_price,omitempty"`
	Metadata         Coin    `json:"metadata"`
	ListingURL       string  `json:"listing_url,omitempty"`
}

// MatchRecord is a persisted curator decision linking a catalog coin to a
// candidate (or recording a decision with no candidate).
type MatchRecord struct {
	ID              string      `json:"id"`
	CoinID          string      `json:"coin_id"`
	CandidateID     string      `json:"candidate_id,omitempty"`
	SimilarityScore float64     `json:"similarity_score"`
	Status          MatchStatus `json:"status"`
	SavedAt         string      `json:"saved_at"`
	Source          string      `json:"source"`
	Notes           string      `json:"notes,omitempty"`
	MuseumCoinTitle string      `json:"museum_coin_title"`
	CandidateTitle  string      `json:"candidate_title"`
}
