// Package assembler builds the persisted FormSubmission from collected parts.
package assembler

import "github.com/goliatone/go-offerform/pkg/model"

// Assemble combines the email, scalar values, final order and collected
// items into a record. NumTicketItems is derived from the order, and
// OtherUVPDesc is only set when the UVP type is Other and text was supplied.
// Input slices are copied.
func Assemble(email string, scalars model.Scalars, order []string, items []model.TicketItem) model.FormSubmission {
	sub := model.FormSubmission{
		Email:           email,
		AvatarDesc:      scalars.AvatarDesc,
		AvatarPainList:  scalars.AvatarPainList,
		UniqueValueProp: scalars.UniqueValueProp,
		UVPType:         scalars.UVPType,
		LeadMagnetDesc:  scalars.LeadMagnetDesc,
		NumTicketItems:  len(order),
		TicketOrder:     append([]string{}, order...),
		TicketItems:     append([]model.TicketItem{}, items...),
	}
	if scalars.UVPType == model.UVPTypeOther && scalars.OtherUVPDesc != "" {
		desc := scalars.OtherUVPDesc
		sub.OtherUVPDesc = &desc
	}
	return sub
}
