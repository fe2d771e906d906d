package handlers

import (
	"net/http"
	"strings"

	"car-loan-calculator/internal/listing"
)

// ListingRequest is the body of POST /api/listing/parse. HTML is an optional
// copy of the listing page.
type ListingRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html,omitempty"`
}

// ListingResponse holds whatever could be recovered. Both parts may be nil.
type ListingResponse struct {
	Supported bool             `json:"supported"`
	Listing   *listing.Listing `json:"listing,omitempty"`
	Meta      *listing.Meta    `json:"meta,omitempty"`
}

// ListingHandler serves the listing parser.
type ListingHandler struct {
	parser *listing.Parser
}

// NewListingHandler creates a listing handler.
func NewListingHandler(parser *listing.Parser) *ListingHandler {
	if parser == nil {
		parser = listing.NewParser()
	}
	return &ListingHandler{parser: parser}
}

// Parse serves POST /api/listing/parse.
func (h *ListingHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ListingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp := ListingResponse{
		Supported: listing.IsSupportedURL(req.URL),
		Listing:   h.parser.ParseURL(req.URL),
	}

	if strings.TrimSpace(req.HTML) != "" {
		if meta, err := listing.ExtractMeta(strings.NewReader(req.HTML)); err == nil {
			resp.Meta = meta
			if resp.Listing != nil && resp.Listing.Name == listing.DefaultName && meta.Title != "" {
				resp.Listing.Name = meta.Title
			}
		}
	}

	writeData(w, http.StatusOK, resp)
}
