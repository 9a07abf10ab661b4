/*
Package config provides configuration for the tickprof host.

Configuration is read from environment variables with defaults; a TOML or
YAML file may override any key. Command-line flags override both.

# Environment Variables

Profiler:
  - TICKPROF_LIMIT: Normal per-turn budget in ms (default: 20)
  - TICKPROF_TICK_LIMIT: Hard per-turn ceiling in ms (default: 500)
  - TICKPROF_LONG_TICK_RATIO: Dump the trace when a turn ends above limit*ratio (unset)
  - TICKPROF_PANIC_TICK_RATIO: Emergency flush at tick_limit*ratio (unset)
  - TICKPROF_CLOCK: cpu, wall or manual (default: cpu)

Reports:
  - TICKPROF_REPORT_DIR: Directory for one file per report (unset)
  - TICKPROF_REPORT_STDOUT: Print reports to stdout (default: true)
  - TICKPROF_REPORT_LOG: Embed reports in log entries (default: false)

State:
  - TICKPROF_STATE: File persisting turn state between runs (unset)

Logging:
  - LOG_LEVEL: Log level - debug, info, warn, error (default: info)
  - LOG_DEV: Development mode (default: false)

Status server:
  - SERVER_ENABLED: Serve /health, /metrics, /state and /report (default: false)
  - SERVER_ADDR: Listen address (default: :9102)
  - CORS_ORIGINS: Comma-separated origins allowed to fetch reports (default: *)
  - RATE_LIMIT_RPS: Requests per second for POST /report (default: 5)
  - RATE_LIMIT_BURST: Burst for POST /report (default: 10)

Script:
  - TICKPROF_TURNS: Turns to run (default: 1)
  - TICKPROF_SCRIPT_TIMEOUT: Per-turn script timeout (default: 5s)

# Usage

	cfg, err := config.LoadFile("tickprof.toml")
	if err != nil {
		log.Fatal(err)
	}
*/
package config
