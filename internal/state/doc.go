// Package state holds the engine's goal/enabled state and the message
// protocol spoken with the settings store.
//
// The store answers GET_STATE with {focusGoal, isEnabled} and pushes
// GOAL_UPDATED {goal} and TOGGLE_CHANGED {isEnabled} notifications. On the
// wire every message is a JSON object tagged by a "type" field. The engine
// only consumes the protocol; it never writes to the store.
//
// Scans never read State directly. They run with a Snapshot taken at scan
// start, whose keyword set is derived from the goal at that moment.
package state
