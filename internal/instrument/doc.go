// Package instrument decorates callables with span recording.
//
// A wrapped callable has the same signature as the original. When the
// tracer is disabled it calls straight through; otherwise it checks the
// emergency budget, records a begin span, runs the original and records
// the end span. Returned errors and panics pass through untouched, and a
// panicking callable leaves its span unclosed.
//
// Single callables:
//
//	load := instrument.FuncErr(tracer, "store.load", store.Load)
//
// Batch wrapping replaces func variables in place:
//
//	w := instrument.NewWrapper(tracer, logger)
//	w.WrapAll("room",
//		instrument.Method("plan", &room.Plan),
//		instrument.Accessor("energy", &room.GetEnergy, &room.SetEnergy),
//	)
//	w.WrapStruct("hooks", &hooks)
package instrument
