package handler

type OriginalResponse struct {
	Title       string   `json:"title"`
	Bullets     []string `json:"bullets"`
	Description string   `json:"description"`
}

type OptimizedResponse struct {
	OptTitle       string   `json:"opt_title"`
	OptBullets     []string `json:"opt_bullets"`
	OptDescription string   `json:"opt_description"`
	Keywords       string   `json:"keywords"`
}

type ListingResponse struct {
	Original  OriginalResponse   `json:"original"`
	Optimized *OptimizedResponse `json:"optimized"`
}

// OptimizeRequest accepts the identifier as "id" or, on the legacy route, "asin".
type OptimizeRequest struct {
	ID          string   `json:"id"`
	ASIN        string   `json:"asin"`
	Title       string   `json:"title"`
	Bullets     []string `json:"bullets"`
	Description string   `json:"description"`
}

type OptimizeResponse struct {
	Optimized OptimizedResponse `json:"optimized"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
