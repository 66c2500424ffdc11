package dataprocessing

import (
	"deliveryboard/internal/textreport"
	"deliveryboard/pkg/contracts/domain"
)

// ReservationLayout reads reservation lists. The column order is fixed from
// the need date onwards; leading columns vary between generation runs.
func ReservationLayout() Layout {
	return Layout{
		Kind: domain.KindReservation,
		Rules: textreport.LineRules{
			RequireLeadingDelimiter: true,
			RequireDate:             true,
		},
		Strategy: FixedOffset{
			Columns: map[string]int{
				domain.FieldNeededDate:  0,
				domain.FieldMaterial:    1,
				domain.FieldDescription: 2,
				domain.FieldQuantity:    3,
				domain.FieldUnit:        4,
				domain.FieldUser:        5,
				domain.FieldReservation: 6,
			},
			MinColumns:  7,
			Anchor:      AnchorFirstDate,
			RequiredAny: []string{domain.FieldMaterial, domain.FieldDescription},
		},
		Fields: []string{
			domain.FieldNeededDate, domain.FieldMaterial, domain.FieldDescription,
			domain.FieldQuantity, domain.FieldUnit, domain.FieldUser, domain.FieldReservation,
		},
		Target: func(fields map[string]string, _ string) *domain.Date {
			return dateField(fields[domain.FieldNeededDate])
		},
		Key: func(fields map[string]string, line string) string {
			return identityKey(line, fields[domain.FieldReservation], fields[domain.FieldMaterial])
		},
	}
}

// NewReservationParser creates a parser for reservation reports
func NewReservationParser(opts Options) *Parser {
	return NewParser(ReservationLayout(), opts)
}
