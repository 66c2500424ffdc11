package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryboard/pkg/contracts/domain"
)

func fixedOptions() Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	opts.Location = time.UTC
	return opts
}

func date(y int, m time.Month, d int) *domain.Date {
	v := domain.NewDate(y, m, d)
	return &v
}

const reservationReport = `Lista de reservas
-----------------------------------------------------------------------------
| Dt.nec.    | Material | Texto breve   | Qtd. | UM | Usuário | Reserva |
-----------------------------------------------------------------------------
| 12.03.2025 | 4711     | Parafuso M8   | 10   | PC | JSILVA  | 0001234 |
| 05.03.2025 | 4712     | Porca M8      | 20   | PC | JSILVA  | 0001235 |
|            | 4713     | Arruela       | 5    | PC | MSOUZA  | 0001236 |
| 10.03.2025 |          |               | 1    | UN | MSOUZA  | 0001237 |
| 01 | 11.03.2025 | 4714 | Luva | 2 | PR | ABC | 0001238 |
-----------------------------------------------------------------------------
`

func TestReservationParser(t *testing.T) {
	p := NewReservationParser(fixedOptions())

	res, err := p.Parse([]byte(reservationReport))
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	first := res.Records[0]
	assert.Equal(t, domain.KindReservation, first.Kind)
	assert.Equal(t, "4711", first.Field(domain.FieldMaterial))
	assert.Equal(t, "Parafuso M8", first.Field(domain.FieldDescription))
	assert.Equal(t, "10", first.Field(domain.FieldQuantity))
	assert.Equal(t, "PC", first.Field(domain.FieldUnit))
	assert.Equal(t, "JSILVA", first.Field(domain.FieldUser))
	assert.Equal(t, "0001234", first.Field(domain.FieldReservation))
	assert.Equal(t, date(2025, 3, 12), first.TargetDate)
	assert.Equal(t, RecordID(domain.KindReservation, "0001234|4711"), first.ID)
	assert.True(t, strings.HasPrefix(first.RawLine, "| 12.03.2025"))

	// leading column shifted by one, anchored on the date
	assert.Equal(t, "4714", res.Records[1].Field(domain.FieldMaterial))
	assert.Equal(t, "0001238", res.Records[1].Field(domain.FieldReservation))
	assert.Equal(t, date(2025, 3, 11), res.Records[1].TargetDate)

	assert.Equal(t, "4712", res.Records[2].Field(domain.FieldMaterial))

	assert.Equal(t, 1, res.Stats.Dropped, "row without material and description")
	assert.Equal(t, 3, res.Stats.Data)
}

func TestReservationParserPadsShortRows(t *testing.T) {
	p := NewReservationParser(fixedOptions())

	res, err := p.Parse([]byte("| 15.03.2025 | 4715 | Cabo |\n"))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "Cabo", rec.Field(domain.FieldDescription))
	assert.Equal(t, "", rec.Field(domain.FieldReservation))
	assert.Contains(t, rec.Fields, domain.FieldUser)
}

func TestReservationParserCompactColumns(t *testing.T) {
	report := "| 12.03.2025 |  | 4711 | Parafuso | 10 | PC | JSILVA | 0001234 |\n"

	positional, err := NewReservationParser(fixedOptions()).Parse([]byte(report))
	require.NoError(t, err)
	require.Len(t, positional.Records, 1)
	assert.Equal(t, "", positional.Records[0].Field(domain.FieldMaterial))
	assert.Equal(t, "4711", positional.Records[0].Field(domain.FieldDescription))

	opts := fixedOptions()
	opts.CompactColumns = true
	compact, err := NewReservationParser(opts).Parse([]byte(report))
	require.NoError(t, err)
	require.Len(t, compact.Records, 1)

	rec := compact.Records[0]
	assert.Equal(t, "4711", rec.Field(domain.FieldMaterial))
	assert.Equal(t, "Parafuso", rec.Field(domain.FieldDescription))
	assert.Equal(t, "0001234", rec.Field(domain.FieldReservation))
}

func TestRequisitionParserKeepsPositionsWhenCompacting(t *testing.T) {
	report := "| Requisição | Item | Material | Data rem. |\n| 30001 |  | 4711 | 15.03.2025 |\n"
	opts := fixedOptions()
	opts.CompactColumns = true

	res, err := NewRequisitionParser(opts).Parse([]byte(report))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "4711", res.Records[0].Field(domain.FieldMaterial))
}

func TestParserIdsAreDeterministic(t *testing.T) {
	p := NewReservationParser(fixedOptions())

	a, err := p.Parse([]byte(reservationReport))
	require.NoError(t, err)
	b, err := p.Parse([]byte(reservationReport))
	require.NoError(t, err)

	require.Equal(t, len(a.Records), len(b.Records))
	for i := range a.Records {
		assert.Equal(t, a.Records[i].ID, b.Records[i].ID)
	}
}

func TestParserFallbackKeyIsRawLine(t *testing.T) {
	line := "|  16.03.2025 |  | Item avulso |  1 | UN | X |  |"
	p := NewReservationParser(fixedOptions())

	res, err := p.Parse([]byte(line + "\n"))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	assert.Equal(t, RecordID(domain.KindReservation, "| 16.03.2025 | | Item avulso | 1 | UN | X | |"), res.Records[0].ID)
}

func TestParserDuplicatesLastWins(t *testing.T) {
	report := strings.Join([]string{
		"| 12.03.2025 | 4711 | Parafuso | 10 | PC | A | 0001234 |",
		"| 13.03.2025 | 4799 | Outro    | 1  | PC | A | 0009999 |",
		"| 11.03.2025 | 4711 | Parafuso | 99 | PC | B | 0001234 |",
	}, "\n")
	p := NewReservationParser(fixedOptions())

	res, err := p.Parse([]byte(report))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Stats.Duplicates)

	var dup domain.Record
	for _, r := range res.Records {
		if r.Field(domain.FieldReservation) == "0001234" {
			dup = r
		}
	}
	assert.Equal(t, "99", dup.Field(domain.FieldQuantity))
	assert.Equal(t, date(2025, 3, 11), dup.TargetDate)
}

func TestParserCapsNewestFirst(t *testing.T) {
	opts := fixedOptions()
	opts.MaxRecords = 2
	p := NewReservationParser(opts)

	res, err := p.Parse([]byte(reservationReport))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Stats.Truncated)
	assert.Equal(t, date(2025, 3, 12), res.Records[0].TargetDate)
	assert.Equal(t, date(2025, 3, 11), res.Records[1].TargetDate)
}

func TestSortByTargetDescKeepsUndatedLast(t *testing.T) {
	records := []domain.Record{
		{ID: "undated"},
		{ID: "old", TargetDate: date(2025, 1, 1)},
		{ID: "new", TargetDate: date(2025, 6, 1)},
		{ID: "old-2", TargetDate: date(2025, 1, 1)},
	}

	sortByTargetDesc(records)

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"new", "old", "old-2", "undated"}, ids)
}

const requisitionReport = `Lista de requisições de compra
| 10000 | 10 | 4710 | Antes do cabeçalho | 1 | PC | 01.03.2025 | 02.03.2025 |  |  |
----------------------------------------------------------------------------------------------
| Requisição | Item | Material | Texto breve | Qtd. | UM | Data solic. | Data rem. | Pedido  | Fornecedor |
----------------------------------------------------------------------------------------------
| 10001      | 10   | 4711     | Parafuso M8 | 10   | PC | 01.03.2025  | 15.03.2025 | 4500001 | ACME       |
| 10002      | 10   | 4712     | Porca       | 5    | PC | 20.01.2025  | 05.03.2025 |         |            |
| 10003      | 20   | 4713     | Arruela     | 1    | PC | 05.03.2025  | 10.03.2025 |         |            |
| Requisição | Item | repetido | 01.03.2025  |      |    |             |            |         |            |
----------------------------------------------------------------------------------------------
| Data rem.  | Requisição | Item | Material | Texto breve | Data solic. |
| 20.03.2025 | 10004      | 10   | 4714     | Luva        | 09.03.2025  |
`

func TestRequisitionParser(t *testing.T) {
	p := NewRequisitionParser(fixedOptions())

	res, err := p.Parse([]byte(requisitionReport))
	require.NoError(t, err)
	require.Len(t, res.Records, 4)
	assert.Equal(t, 2, res.Stats.Headers)
	assert.Equal(t, 2, res.Stats.Dropped, "row before the header and repeated label row")

	byReq := make(map[string]domain.Record)
	for _, r := range res.Records {
		byReq[r.Field(domain.FieldRequisition)] = r
	}

	r1 := byReq["10001"]
	assert.Equal(t, date(2025, 3, 15), r1.TargetDate)
	assert.Equal(t, "4500001", r1.Field(domain.FieldOrder))
	assert.Equal(t, "ACME", r1.Field(domain.FieldSupplier))
	assert.Equal(t, string(domain.ApprovalApproved), r1.Field(domain.FieldApprovalStatus))
	assert.Equal(t, RecordID(domain.KindRequisition, "10001|10"), r1.ID)

	assert.Equal(t, string(domain.ApprovalNotApproved), byReq["10002"].Field(domain.FieldApprovalStatus))
	assert.Equal(t, string(domain.ApprovalPending), byReq["10003"].Field(domain.FieldApprovalStatus))

	// second page uses a different column order
	r4 := byReq["10004"]
	assert.Equal(t, date(2025, 3, 20), r4.TargetDate)
	assert.Equal(t, "Luva", r4.Field(domain.FieldDescription))
	assert.Equal(t, "", r4.Field(domain.FieldOrder))
	assert.Contains(t, r4.Fields, domain.FieldRequester)

	assert.Equal(t, "10004", res.Records[0].Field(domain.FieldRequisition), "newest first")
}

func TestRequisitionParserWithoutHeader(t *testing.T) {
	p := NewRequisitionParser(fixedOptions())

	_, err := p.Parse([]byte("| 10001 | 10 | 4711 | 01.03.2025 | 15.03.2025 |\n"))
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestRequisitionParserAcceptsEveryKeyLabel(t *testing.T) {
	for _, label := range RequisitionSynonyms[domain.FieldRequisition] {
		t.Run(label, func(t *testing.T) {
			report := "| " + label + " | Item | Material | Data rem. |\n| 30001 | 10 | 4711 | 15.03.2025 |\n"

			res, err := NewRequisitionParser(fixedOptions()).Parse([]byte(report))
			require.NoError(t, err)
			require.Len(t, res.Records, 1)
			assert.Equal(t, "30001", res.Records[0].Field(domain.FieldRequisition))
			assert.Equal(t, 1, res.Stats.Headers)
		})
	}
}

func TestParserIgnoresByteOrderMark(t *testing.T) {
	t.Run("requisition header on the first line", func(t *testing.T) {
		report := "\ufeff| Requisição | Item | Material | Data rem. |\n| 30001 | 10 | 4711 | 15.03.2025 |\n"

		res, err := NewRequisitionParser(fixedOptions()).Parse([]byte(report))
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
	})

	t.Run("reservation data on the first line", func(t *testing.T) {
		report := "\ufeff| 12.03.2025 | 4711 | Parafuso | 10 | PC | JS | 0001234 |\n"

		res, err := NewReservationParser(fixedOptions()).Parse([]byte(report))
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "4711", res.Records[0].Field(domain.FieldMaterial))
		assert.Equal(t, 0, res.Stats.Dropped)
	})
}

func TestRequisitionTargetWithoutRemittanceColumn(t *testing.T) {
	report := strings.Join([]string{
		"| Requisição | Item | Material | Data solic. | Entrega |",
		"| 20001 | 10 | 4711 | 01.03.2025 | 18.03.2025 |",
		"| 20002 | 10 | 4712 | 02.03.2025 |  |",
	}, "\n")
	p := NewRequisitionParser(fixedOptions())

	res, err := p.Parse([]byte(report))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	assert.Equal(t, date(2025, 3, 18), res.Records[0].TargetDate)
	assert.Equal(t, date(2025, 3, 2), res.Records[1].TargetDate)
}

func TestRequisitionKeyFallsBackToMaterial(t *testing.T) {
	report := "| Requisição | Material | Data rem. |\n| 30001 | 4711 | 15.03.2025 |\n"
	p := NewRequisitionParser(fixedOptions())

	res, err := p.Parse([]byte(report))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, RecordID(domain.KindRequisition, "30001|4711"), res.Records[0].ID)
}

func TestApproval(t *testing.T) {
	today := domain.NewDate(2025, 3, 10)

	tests := []struct {
		name   string
		fields map[string]string
		want   domain.ApprovalStatus
	}{
		{"ordered", map[string]string{domain.FieldOrder: "4500001", domain.FieldSolicitedDate: "01.01.2020"}, domain.ApprovalApproved},
		{"recent solicitation", map[string]string{domain.FieldSolicitedDate: "09.02.2025"}, domain.ApprovalPending},
		{"exactly thirty days", map[string]string{domain.FieldSolicitedDate: "08.02.2025"}, domain.ApprovalNotApproved},
		{"old solicitation", map[string]string{domain.FieldSolicitedDate: "01.12.2024"}, domain.ApprovalNotApproved},
		{"no solicitation date", map[string]string{}, domain.ApprovalNotApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Approval(tt.fields, today))
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("latin1 requisition export", func(t *testing.T) {
		header := []byte("| Requisi\xe7\xe3o | Item | Descri\xe7\xe3o | Data rem. |\n")
		row := []byte("| 10001 | 10 | A\xe7o inox | 15.03.2025 |\n")
		path := filepath.Join(dir, "req.txt")
		require.NoError(t, os.WriteFile(path, append(header, row...), 0o644))

		res, err := NewRequisitionParser(fixedOptions()).ParseFile(path, 0)
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "Aço inox", res.Records[0].Field(domain.FieldDescription))
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(dir, "big.txt")
		require.NoError(t, os.WriteFile(path, []byte(reservationReport), 0o644))

		_, err := NewReservationParser(fixedOptions()).ParseFile(path, 16)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewReservationParser(fixedOptions()).ParseFile(filepath.Join(dir, "nope.txt"), 0)
		assert.Error(t, err)
	})
}

func TestNewParserForKind(t *testing.T) {
	p, err := NewParserForKind(domain.KindRequisition, fixedOptions())
	require.NoError(t, err)
	assert.Equal(t, domain.KindRequisition, p.Kind())

	_, err = NewParserForKind("invoice", fixedOptions())
	assert.Error(t, err)
}
