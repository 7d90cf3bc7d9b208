package francetravail

import (
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/jobpilot/jobpilot/internal/matching"
)

// Offer is one job offer as returned by the search API, with the fields
// the rest of the pipeline cares about pulled out of the nested payload.
type Offer struct {
	ID           string
	Title        string
	CompanyName  string
	Description  string
	URL          string
	Location     string
	ContractType string
	PublishedAt  *time.Time

	// Raw keeps the full API payload for later inspection.
	Raw map[string]any
}

type offerPayload struct {
	ID          string `mapstructure:"id"`
	Intitule    string `mapstructure:"intitule"`
	Description string `mapstructure:"description"`
	Entreprise  struct {
		Nom string `mapstructure:"nom"`
	} `mapstructure:"entreprise"`
	LieuTravail struct {
		Libelle string `mapstructure:"libelle"`
	} `mapstructure:"lieuTravail"`
	OrigineOffre struct {
		URLOrigine string `mapstructure:"urlOrigine"`
	} `mapstructure:"origineOffre"`
	TypeContrat  string `mapstructure:"typeContrat"`
	DateCreation string `mapstructure:"dateCreation"`
}

func offerFromPayload(payload map[string]any) (*Offer, error) {
	var p offerPayload
	if err := mapstructure.Decode(payload, &p); err != nil {
		return nil, err
	}

	offer := &Offer{
		ID:           p.ID,
		Title:        p.Intitule,
		CompanyName:  p.Entreprise.Nom,
		Description:  p.Description,
		URL:          p.OrigineOffre.URLOrigine,
		Location:     p.LieuTravail.Libelle,
		ContractType: p.TypeContrat,
		Raw:          payload,
	}

	// The API reports creation time as RFC 3339. An unparseable value is
	// kept as an offer without a date rather than a failed page.
	if p.DateCreation != "" {
		if t, err := time.Parse(time.RFC3339, p.DateCreation); err == nil {
			utc := t.UTC()
			offer.PublishedAt = &utc
		}
	}

	return offer, nil
}

// ToMatching converts the transport offer into the domain representation.
func (o *Offer) ToMatching() *matching.Offer {
	return &matching.Offer{
		RemoteID:     o.ID,
		Title:        o.Title,
		CompanyName:  o.CompanyName,
		Description:  o.Description,
		URL:          o.URL,
		Location:     o.Location,
		ContractType: o.ContractType,
		DatePosted:   o.PublishedAt,
		RawData:      o.Raw,
	}
}
