package exporter

import (
	"deliveryboard/pkg/contracts/domain"
)

// fieldLabels are the column titles of record fields
var fieldLabels = map[string]string{
	domain.FieldMaterial:       "Material",
	domain.FieldDescription:    "Descrição",
	domain.FieldQuantity:       "Quantidade",
	domain.FieldUnit:           "UM",
	domain.FieldNeededDate:     "Data nec.",
	domain.FieldUser:           "Usuário",
	domain.FieldReservation:    "Reserva",
	domain.FieldRequisition:    "Requisição",
	domain.FieldItem:           "Item",
	domain.FieldSolicitedDate:  "Data solic.",
	domain.FieldRemittanceDate: "Data rem.",
	domain.FieldOrder:          "Pedido",
	domain.FieldSupplier:       "Fornecedor",
	domain.FieldRequester:      "Requisitante",
	domain.FieldApprovalStatus: "Aprovação",
}

// bucketLabels are the display names of the buckets, also used as sheet names
var bucketLabels = map[domain.Bucket]string{
	domain.BucketOnTrack:   "No prazo",
	domain.BucketDelivered: "Entregue",
	domain.BucketLate:      "Atrasado",
}

// bucketOrder is the order buckets are written in
var bucketOrder = []domain.Bucket{domain.BucketOnTrack, domain.BucketDelivered, domain.BucketLate}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

func bucketLabel(b domain.Bucket) string {
	if label, ok := bucketLabels[b]; ok {
		return label
	}
	return string(b)
}

// formatDate formats a target date as dd.mm.yyyy, the way the reports print it
func formatDate(d *domain.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Time().Format("02.01.2006")
}

// formatConfirmed renders a confirmation answer; no answer is empty
func formatConfirmed(v *bool) string {
	if v == nil {
		return ""
	}
	return formatBool(*v)
}

func formatBool(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
