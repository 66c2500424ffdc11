// Package dataprocessing turns raw ERP list exports into domain records.
//
// Two report shapes are supported. Reservation exports have a stable column
// order that starts at the need date, so they are read with a FixedOffset
// strategy anchored on the first date column. Requisition exports vary in
// column order between variants and carry a labelled header row (repeated on
// every page), so they are read with a HeaderDriven strategy.
//
// # Usage
//
//	p := dataprocessing.NewReservationParser(dataprocessing.DefaultOptions())
//	res, err := p.ParseFile("exports/reservas/ME5R_20250301.txt", 10<<20)
//	if err != nil {
//	    return err
//	}
//	for _, rec := range res.Records {
//	    fmt.Println(rec.ID, rec.Field(domain.FieldMaterial), rec.TargetDate)
//	}
//
// # Pipeline
//
//	decode → classify line → split → map columns → build record →
//	dedupe by id → sort by target date (newest first) → cap
//
// Lines that do not fit the layout are dropped and counted in Stats; they
// never fail the file. Only I/O errors and a requisition export with no
// header row (ErrHeaderNotFound) are returned as errors.
package dataprocessing
