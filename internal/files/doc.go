// Package files locates the report exports the board reads.
//
// The ERP drops a new export into a watched directory on every run and
// older exports are left in place, so the current report is simply the most
// recently modified regular file in the directory. Subdirectories and hidden
// files (dot-prefixed, editor swap files) are never considered.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/srv/board")
//
//	latest, err := discovery.LatestFile("exports/reservas")
//	if errors.Is(err, files.ErrNoReports) {
//	    // directory exists but holds no export yet
//	}
package files
