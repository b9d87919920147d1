package dto

// ComprobanteResponse is the receipt state of a sale or service.
type ComprobanteResponse struct {
	ID         string  `json:"id"`
	OrigenTipo string  `json:"origen_tipo"`
	OrigenID   string  `json:"origen_id"`
	Numero     string  `json:"numero"`
	Estado     string  `json:"estado"`
	Email      *string `json:"email"`
	Intentos   int     `json:"intentos"`
	LastError  *string `json:"last_error"`
	PDFUrl     *string `json:"pdf_url,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}
