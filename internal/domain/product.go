package domain

import "time"

// AttributeInput enumerates catalog frontend-input types relevant for
// message rendering.
type AttributeInput string

const (
	InputText        AttributeInput = "text"
	InputTextarea    AttributeInput = "textarea"
	InputPrice       AttributeInput = "price"
	InputBoolean     AttributeInput = "boolean"
	InputDate        AttributeInput = "date"
	InputSelect      AttributeInput = "select"
	InputMultiselect AttributeInput = "multiselect"
)

// AttributeValue is a catalog attribute resolved for one product: the
// raw stored value plus the metadata the composer needs to label and
// format it.
type AttributeValue struct {
	Code          string
	FrontendLabel string
	Input         AttributeInput
	Value         string
}

// CatalogProduct is the read-side view of a catalog row returned by the
// CatalogReader, limited to what the sync needs.
type CatalogProduct struct {
	SKU              string
	Name             string
	TypeID           string
	URLKey           string
	ShortDescription string
	Image            string
	FinalPrice       float64
	CreatedAt        time.Time
	Attributes       []AttributeValue
}

// Candidate is a catalog product selected for this run's publication
// attempt, with its ledger record already created in pending status.
type Candidate struct {
	RecordID    string
	SKU         string
	Name        string
	URL         string
	Description string
	Price       float64
	Attributes  []AttributeValue
}

// PhotoPost is the payload for one remote photo post.
type PhotoPost struct {
	ImageURL string
	Caption  string
}
