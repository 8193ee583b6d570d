package model

// UVPTypeOther is the unique value proposition choice that enables the free
// text OtherUVPDesc field.
const UVPTypeOther = "Other"

// TicketItem is one priced offering collected from a section. It has no
// identity outside the ordered list of its parent FormSubmission.
type TicketItem struct {
	ProductName  string `json:"product_name" yaml:"product_name" validate:"required"`
	ProductType  string `json:"product_type" yaml:"product_type" validate:"required"`
	Price        int    `json:"price" yaml:"price" validate:"min=0"`
	FeaturesDesc string `json:"features_desc" yaml:"features_desc"`
	Benefits     string `json:"benefits" yaml:"benefits"`
}

// FormSubmission is the record persisted per email. TicketOrder and
// TicketItems share length and order; NumTicketItems equals both lengths.
type FormSubmission struct {
	Email           string       `json:"email" yaml:"email" validate:"required,email"`
	AvatarDesc      string       `json:"avatar_desc" yaml:"avatar_desc"`
	AvatarPainList  string       `json:"avatar_pain_list" yaml:"avatar_pain_list"`
	UniqueValueProp string       `json:"unique_value_prop" yaml:"unique_value_prop"`
	UVPType         string       `json:"uvp_type" yaml:"uvp_type" validate:"required"`
	OtherUVPDesc    *string      `json:"other_uvp_desc" yaml:"other_uvp_desc"`
	LeadMagnetDesc  string       `json:"lead_magnet_desc" yaml:"lead_magnet_desc"`
	NumTicketItems  int          `json:"num_ticket_items" yaml:"num_ticket_items" validate:"min=1"`
	TicketOrder     []string     `json:"ticket_order" yaml:"ticket_order" validate:"required,unique,dive,required"`
	TicketItems     []TicketItem `json:"ticket_items" yaml:"ticket_items" validate:"required,dive"`
}

// Scalars carries the non-section field values read from form state.
type Scalars struct {
	AvatarDesc      string
	AvatarPainList  string
	UniqueValueProp string
	UVPType         string
	OtherUVPDesc    string
	LeadMagnetDesc  string
}
