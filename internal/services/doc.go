// Package services implements the board's business layer: turning the
// newest report export of each kind into a published, classified snapshot,
// recording confirmations and keeping the board current over time.
//
// # Components
//
//	BoardState   owns the published snapshot of each record kind
//	BoardService refreshes, reclassifies and confirms
//	Scheduler    periodic safety refresh and the midnight reclassification
//	HealthService liveness, readiness and version information
//
// # Publication
//
// Snapshots are immutable once published. A refresh builds a complete new
// snapshot and swaps it in atomically, so readers see either the previous
// board or the new one, never a mix. Refreshes of the same kind are
// serialized; different kinds proceed independently.
//
// A refresh that fails for any reason (directory missing, unreadable file,
// requisition export without a header row, store unavailable) leaves the
// previously published snapshot in place and is logged and counted.
//
// # Usage
//
//	board, err := services.NewBoardService(cfg, store,
//	    services.WithLogger(logger),
//	    services.WithNotifier(hubAdapter))
//	if err != nil {
//	    return err
//	}
//	_ = board.RefreshAll(ctx)
//	result := board.Result(domain.KindReservation)
package services
