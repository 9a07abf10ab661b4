/*
Package script hosts turn-based JavaScript programs on goja with the tracer
wired in.

A script defines a global loop function. Each call to Tick runs loop as one
turn. Scripts see three globals besides the usual built-ins:

	cpu.getUsed()                      usage clock reading (ms)
	cpu.limit, cpu.tickLimit           turn budget
	profiler.registerObject(obj, label)
	profiler.registerClass(cls, label) wrap every method and accessor
	profiler.wrap([name,] fn)          wrap a single function
	profiler.scope(name, fn)           record a span around fn
	profiler.report()                  emit a report at turn end
	profiler.panic()                   emergency flush now
	profiler.enabled()
	console.log / info / warn / error  routed to the host logger

registerClass wraps the prototype of a constructor; registerObject wraps
the object itself unless it also has a prototype. Accessor properties get
their getter and setter wrapped separately as label.name:get and
label.name:set. Non-configurable accessors and denylisted names are left
alone.
*/
package script
