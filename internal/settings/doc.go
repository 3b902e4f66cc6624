// Package settings persists the focus goal and the filter toggle.
//
// The store is a small SQLite key-value table kept in the XDG data
// directory. It implements state.Source: FetchState answers the engine's
// GET_STATE request, and every change made through SetGoal or SetEnabled is
// pushed to subscribers as GOAL_UPDATED or TOGGLE_CHANGED. Changes written by
// another process are picked up by Watch, which polls the table.
package settings
