// Package models defines the core domain models for Splitledger.
//
// # Models
//
//   - User: a registered account, referenced (never owned) by expenses
//   - Expense: an amount paid by one user, divided among participants
//   - SplitLine: one participant's assigned portion of an expense
//
// An Expense exclusively owns its SplitLines: the lines are persisted in the
// same transaction as the expense and deleted with it. Monetary values are
// decimal throughout; binary floating point is never used for money.
//
// # Design Principles
//
// 1. **Avoid circular references**: relationships use ID strings, not pointers
// 2. **Complete snapshots**: a loaded expense carries all of its split lines,
// so validation and aggregation always see the full set at once
package models
