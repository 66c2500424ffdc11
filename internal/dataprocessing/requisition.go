package dataprocessing

import (
	"deliveryboard/internal/textreport"
	"deliveryboard/pkg/contracts/domain"
)

// ApprovalWindowDays is how long an unordered requisition stays pending
const ApprovalWindowDays = 30

// RequisitionMarkers identify requisition header rows. Every label of the
// key field must contain one of them.
var RequisitionMarkers = []string{
	"requisição", "requisicao", "requisition", "reqc", "req.compra", "purch.req",
	"solicitação de compra", "solicitacao de compra",
}

// RequisitionSynonyms lists the header labels seen in the requisition
// export variants, per logical field.
var RequisitionSynonyms = map[string][]string{
	domain.FieldRequisition:    {"Requisição", "Requisição de compra", "ReqC", "Req.compra", "Purch.Req.", "Purchase Requisition", "Solicitação de compra"},
	domain.FieldItem:           {"Item", "Item req.", "Itm", "Item da requisição"},
	domain.FieldMaterial:       {"Material", "Cód. material", "Código", "Nº material"},
	domain.FieldDescription:    {"Descrição", "Texto breve", "Texto breve material", "Short Text", "Texto"},
	domain.FieldQuantity:       {"Quantidade", "Qtd.", "Qtd. solicitada", "Qtd.requisitada", "Quantity"},
	domain.FieldUnit:           {"UM", "UMR", "Unid.", "Unidade", "UoM"},
	domain.FieldSolicitedDate:  {"Data solic.", "DtaSolic.", "Dt.solic.", "Data da solicitação", "Data solicitação", "Requisition Date"},
	domain.FieldRemittanceDate: {"Data rem.", "DataRem.", "Dt.remessa", "Data de remessa", "Data remessa", "Delivery Date"},
	domain.FieldOrder:          {"Pedido", "Pedido de compra", "Doc.compra", "Purchase Order", "PO"},
	domain.FieldSupplier:       {"Fornecedor", "Fornecedor desejado", "Fornecedor fixo", "Vendor"},
	domain.FieldRequester:      {"Requisitante", "Requisitado por", "Criado por", "Requisitioner"},
}

// RequisitionLayout reads requisition lists through their header labels
func RequisitionLayout() Layout {
	return Layout{
		Kind: domain.KindRequisition,
		Rules: textreport.LineRules{
			RequireLeadingDelimiter: true,
			RequireDate:             true,
			HeaderMarkers:           RequisitionMarkers,
		},
		Strategy: HeaderDriven{
			Synonyms: RequisitionSynonyms,
			KeyField: domain.FieldRequisition,
		},
		Fields: []string{
			domain.FieldRequisition, domain.FieldItem, domain.FieldMaterial, domain.FieldDescription,
			domain.FieldQuantity, domain.FieldUnit, domain.FieldSolicitedDate, domain.FieldRemittanceDate,
			domain.FieldOrder, domain.FieldSupplier, domain.FieldRequester, domain.FieldApprovalStatus,
		},
		Target: requisitionTarget,
		Key: func(fields map[string]string, line string) string {
			second := fields[domain.FieldItem]
			if second == "" {
				second = fields[domain.FieldMaterial]
			}
			return identityKey(line, fields[domain.FieldRequisition], second)
		},
		Derive: func(fields map[string]string, today domain.Date) {
			fields[domain.FieldApprovalStatus] = string(Approval(fields, today))
		},
	}
}

// NewRequisitionParser creates a parser for requisition reports
func NewRequisitionParser(opts Options) *Parser {
	return NewParser(RequisitionLayout(), opts)
}

// requisitionTarget uses the remittance column. Variants without that label
// carry the remittance date as the second date of the row, or the only one.
func requisitionTarget(fields map[string]string, line string) *domain.Date {
	if v, ok := fields[domain.FieldRemittanceDate]; ok {
		return dateField(v)
	}
	dates := textreport.ExtractDates(line)
	switch len(dates) {
	case 0:
		return nil
	case 1:
		return &dates[0]
	default:
		return &dates[1]
	}
}

// Approval derives the approval state of a requisition: ordered means
// approved; unordered requisitions are pending for ApprovalWindowDays after
// solicitation and not approved afterwards or without a solicitation date.
func Approval(fields map[string]string, today domain.Date) domain.ApprovalStatus {
	if fields[domain.FieldOrder] != "" {
		return domain.ApprovalApproved
	}
	if solic, ok := textreport.ExtractDate(fields[domain.FieldSolicitedDate]); ok {
		if today.DaysSince(solic) < ApprovalWindowDays {
			return domain.ApprovalPending
		}
	}
	return domain.ApprovalNotApproved
}
