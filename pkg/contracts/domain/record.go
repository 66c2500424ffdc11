package domain

import (
	"fmt"
	"strings"
)

// RecordKind identifies which report a record was extracted from
type RecordKind string

const (
	KindReservation RecordKind = "reservation"
	KindRequisition RecordKind = "requisition"
)

// Kinds lists every supported record kind in display order
var Kinds = []RecordKind{KindReservation, KindRequisition}

// ParseRecordKind accepts the canonical names and the Portuguese aliases
// used by the dashboard ("reserva", "reservas", "requisicao", "requisicoes").
func ParseRecordKind(s string) (RecordKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reservation", "reservations", "reserva", "reservas":
		return KindReservation, nil
	case "requisition", "requisitions", "requisicao", "requisicoes", "requisição", "requisições":
		return KindRequisition, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// Field names shared by both report kinds
const (
	FieldMaterial    = "material"
	FieldDescription = "descricao"
	FieldQuantity    = "quantidade"
	FieldUnit        = "um"
)

// Reservation report fields
const (
	FieldNeededDate  = "data_nec"
	FieldUser        = "usuario"
	FieldReservation = "reserva"
)

// Requisition report fields
const (
	FieldRequisition    = "requisicao"
	FieldItem           = "item"
	FieldSolicitedDate  = "data_solic"
	FieldRemittanceDate = "data_rem"
	FieldOrder          = "pedido"
	FieldSupplier       = "fornecedor"
	FieldRequester      = "requisitante"
	FieldApprovalStatus = "aprovacao"
)

// ApprovalStatus is the derived approval state of a requisition
type ApprovalStatus string

const (
	ApprovalApproved    ApprovalStatus = "aprovado"
	ApprovalPending     ApprovalStatus = "pendente"
	ApprovalNotApproved ApprovalStatus = "nao_aprovado"
)

// Record is one line item extracted from a report.
// Fields are kept as display strings; only TargetDate is typed.
type Record struct {
	ID         string            `json:"id"`
	Kind       RecordKind        `json:"kind"`
	Fields     map[string]string `json:"fields"`
	TargetDate *Date             `json:"target_date"`
	RawLine    string            `json:"raw"`
}

// Field returns the named field or "" when absent
func (r Record) Field(name string) string {
	return r.Fields[name]
}
