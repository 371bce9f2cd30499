// Package dashboard composes the per-resource sync controllers into screens.
//
// A Dashboard holds one state.Controller per remote resource. Only the
// controllers of the visible screen run:
//
//	Docker           containers, volumes, status
//	Home automation  version info, status
//	Maintenance      health, config
//	Logs             (none)
//
// Mount performs the switch. Collect and WriteSummary serve the
// non-interactive mode, reading every resource once.
package dashboard
