// Package session manages browser sessions for the console.
//
// A session pairs the backend bearer token with the plan flags that gate the
// UI. The manager enforces one rule everywhere: a free_trial plan whose trial
// end date has passed is read as expired, recomputed on every access rather
// than trusted from storage.
package session
