// Package app wires the tickprof components together and drives turns.
//
// An App owns one tracer, its persisted turn state, the report sinks, the
// metrics observer and a script runtime. Each turn runs the script's loop
// function under the tracer and then saves the turn state.
//
// Example Usage:
//
//	a, err := app.New(cfg, logger, app.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//	if err := a.LoadScript(ctx, "main.js"); err != nil {
//	    log.Fatal(err)
//	}
//	summary, err := a.Run(ctx)
package app
