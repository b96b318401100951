// Package shutdown stops the long-running pieces of pagesum serve in order.
//
// Steps register under a phase; lower phases run first and steps within a
// phase run concurrently. serve registers the HTTP listener at
// PhaseListener (draining in-flight summarize runs) and the state store at
// PhaseStorage.
//
//	coord := shutdown.New(shutdown.DefaultTimeout, logger)
//	coord.Register("http", shutdown.PhaseListener, srv.Shutdown)
//	coord.Register("state", shutdown.PhaseStorage, closeStore)
//	err := coord.WaitForSignal(ctx) // SIGINT, SIGTERM or ctx done
//
// Shutdown runs once. A step failure is logged and the remaining phases
// still run.
package shutdown
