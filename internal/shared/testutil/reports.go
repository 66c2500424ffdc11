package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// FixedNow is the reference clock of the sample reports: 10 March 2025,
// mid-morning UTC. Relative to it the samples hold one past, two due-today
// and one future line each.
var FixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

// ReservationReport is a reservation export as the ERP writes it
const ReservationReport = `| Dt.nec.    | Material | Texto breve | Qtd. | UM | Usuário | Reserva |
| 05.03.2025 | 1001     | Passado     | 1    | PC | ANA     | 9001    |
| 10.03.2025 | 1002     | Hoje        | 2    | PC | ANA     | 9002    |
| 20.03.2025 | 1003     | Futuro      | 3    | PC | BRUNO   | 9003    |
| 10.03.2025 | 1004     | Hoje também | 4    | PC | BRUNO   | 9004    |
`

// RequisitionReport is a requisition export with one header
const RequisitionReport = `| Requisição | Item | Material | Texto breve | Data solic. | Data rem.  | Pedido  |
| 50001      | 10   | 2001     | Cabo        | 01.03.2025  | 08.03.2025 | 4500001 |
| 50002      | 10   | 2002     | Luva        | 02.03.2025  | 10.03.2025 |         |
| 50003      | 20   | 2003     | Bota        | 03.03.2025  | 15.03.2025 |         |
`

// WriteReport writes content into dir/name encoded as Latin-1, the way
// the ERP exports, and sets its modification time. It returns the path.
func WriteReport(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()

	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	if err != nil {
		t.Fatalf("encoding %s: %v", name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("touching %s: %v", path, err)
	}
	return path
}

// ReportDirs creates a reservations and a requisitions directory under a
// fresh temp dir.
func ReportDirs(t *testing.T) (reservations, requisitions string) {
	t.Helper()
	root := t.TempDir()
	reservations = filepath.Join(root, "reservas")
	requisitions = filepath.Join(root, "requisicoes")
	for _, dir := range []string{reservations, requisitions} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("creating %s: %v", dir, err)
		}
	}
	return reservations, requisitions
}
