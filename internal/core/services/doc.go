// Package services implements the driving ports.
//
// ReconcileService runs one cycle: fetch the catalog and the stored
// history, detect new items, merge them into today's batch and persist.
// Scheduler repeats cycles on an interval, SnapshotTracker turns cycle
// events into the state shown by the presentation adapters, and
// HistoryService reads the stored document.
package services
